package services

import (
	"time"

	"gorm.io/gorm"

	"khata/internal/models"
	"khata/internal/pagination"
)

// PersonServicer defines the contract for person-related business logic.
type PersonServicer interface {
	CreatePerson(name, mobile string, isTemporary bool) (*models.Person, error)
	GetPersonByID(personID string) (*models.Person, error)
	UpdatePerson(personID, name, mobile string) (*models.Person, error)
	PersonExists(name string) (bool, error)
	ArchivePerson(personID string) error
	UnarchivePerson(personID string) error
	DeletePerson(personID string) error
	ListPersons(archived bool) ([]models.PersonWithBalance, error)
	PersonBalance(personID string) (int64, error)
	// ReevaluateAutoArchive archives a temporary, non-archived person whose
	// balance has returned to zero. It runs inside the caller's database
	// transaction after every transaction mutation.
	ReevaluateAutoArchive(tx *gorm.DB, personID string) error
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(personID string, amount int64, txType models.TransactionType, note string, date time.Time, dueDate *time.Time) (*models.Transaction, error)
	// CreateTransactionWithSettlements inserts a transaction, applies its
	// tags, applies its settlement allocations, and re-evaluates
	// auto-archive as one atomic unit of work.
	CreateTransactionWithSettlements(personID string, amount int64, txType models.TransactionType, note string, date time.Time, dueDate *time.Time, tagIDs []string, allocations []Allocation) (*models.Transaction, error)
	GetTransactionByID(txnID string) (*models.Transaction, error)
	GetPersonTransactions(personID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	UpdateTransaction(txnID string, amount int64, txType models.TransactionType, note string, date time.Time, dueDate *time.Time) (*models.Transaction, error)
	DeleteTransaction(txnID string) error
}

// TagServicer defines the contract for tag-related business logic.
type TagServicer interface {
	CreateTag(name string) (*models.Tag, error)
	RenameTag(tagID, name string) (*models.Tag, error)
	DeleteTag(tagID string) error
	AllTags() ([]models.Tag, error)
	RecentTags() ([]models.Tag, error)
	TagsForTransaction(txnID string) ([]models.Tag, error)
	SetTagsForTransaction(txnID string, tagIDs []string) error
	// ApplyTags is the full-replace primitive running inside the caller's
	// database transaction: it clears the transaction's tag links, inserts
	// the new set, and bumps LastUsedAt on every tag in it.
	ApplyTags(tx *gorm.DB, txnID string, tagIDs []string) error
}

// Allocation is a single (target, amount) pair within a settlement write.
type Allocation struct {
	TargetTxnID string `json:"target_txn_id"`
	Amount      int64  `json:"amount"`
}

// TargetOption is a settlement-eligible transaction together with how much
// of it is already settled, for the target picker.
type TargetOption struct {
	Transaction     models.Transaction      `json:"transaction"`
	SettledAmount   int64                   `json:"settled_amount"`
	RemainingAmount int64                   `json:"remaining_amount"`
	Status          models.SettlementStatus `json:"status"`
}

// SettlementServicer defines the contract for the settlement engine.
type SettlementServicer interface {
	// SetSettlementsForRepayment replaces every settlement keyed by the
	// repayment transaction with the given allocation list, validating the
	// complete resulting allocation set before committing. An empty list
	// clears all settlements for the repayment.
	SetSettlementsForRepayment(repaymentTxnID string, allocations []Allocation) error
	// ApplyAllocations is the full-replace primitive running inside the
	// caller's database transaction.
	ApplyAllocations(tx *gorm.DB, repayment *models.Transaction, allocations []Allocation) error
	SettlementsForRepayment(repaymentTxnID string) ([]models.Settlement, error)
	SettledAmount(txnID string) (int64, error)
	SettlesAmount(txnID string) (int64, error)
	// EligibleTargets lists the person's opposite-type transactions that are
	// not yet fully settled, most recent first.
	EligibleTargets(personID string, txnType models.TransactionType) ([]TargetOption, error)
}

// StatementEntry is one projected row of a person's history: the
// transaction, the running balance after it, its tags, and its derived
// settlement amounts and status.
type StatementEntry struct {
	Transaction    models.Transaction      `json:"transaction"`
	RunningBalance int64                   `json:"running_balance"`
	Tags           []models.Tag            `json:"tags"`
	SettledAmount  int64                   `json:"settled_amount"`
	SettlesAmount  int64                   `json:"settles_amount"`
	Status         models.SettlementStatus `json:"status"`
}

// MonthGroup is a month's worth of statement entries with the month's net.
type MonthGroup struct {
	Label   string           `json:"label"`
	Net     int64            `json:"net"`
	Entries []StatementEntry `json:"entries"`
}

// SmartStatementMode selects what a smart statement shows.
type SmartStatementMode string

const (
	// SmartStatementModeUnsettled lists outstanding debts in both directions.
	SmartStatementModeUnsettled SmartStatementMode = "UNSETTLED"
	// SmartStatementModeSettled means nothing is outstanding; the statement
	// carries the latest transactions as a reference snapshot.
	SmartStatementModeSettled SmartStatementMode = "SETTLED"
)

// SmartStatement is the report payload for a person.
type SmartStatement struct {
	Mode         SmartStatementMode `json:"mode"`
	Entries      []StatementEntry   `json:"entries"`
	TotalBalance int64              `json:"total_balance"`
}

// StatementServicer defines the contract for balance and statement projections.
type StatementServicer interface {
	PersonStatement(personID string) ([]StatementEntry, int64, error)
	MonthlyStatement(personID string) ([]MonthGroup, int64, error)
	SmartStatement(personID string) (*SmartStatement, error)
	TotalBalance(personID string) (int64, error)
}

// BackupServicer defines the contract for full-state export and restore.
type BackupServicer interface {
	Export() (*models.BackupSnapshot, error)
	Restore(snapshot *models.BackupSnapshot) error
}
