package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "khata/internal/errors"
	"khata/internal/models"
)

// settledReferenceCount is how many recent transactions a smart statement
// shows when nothing is outstanding.
const settledReferenceCount = 10

// statementService projects balances and statements from the ledger,
// settlement, and tag stores. Projections are pure reads recomputed from
// committed state on every call; nothing here is cached or persisted.
type statementService struct {
	db      *gorm.DB
	persons PersonServicer
}

// NewStatementService creates a new StatementServicer.
func NewStatementService(db *gorm.DB, persons PersonServicer) StatementServicer {
	return &statementService{db: db, persons: persons}
}

// PersonStatement returns the person's history newest-first, each entry
// carrying the running balance after that transaction, its tags, and its
// derived settlement amounts and status. The running balance is
// accumulated oldest-first: the oldest entry's running balance is its own
// signed amount, and the newest entry's equals the total balance.
func (s *statementService) PersonStatement(personID string) ([]StatementEntry, int64, error) {
	if _, err := s.persons.GetPersonByID(personID); err != nil {
		return nil, 0, err
	}

	var transactions []models.Transaction
	if err := s.db.
		Where("person_id = ?", personID).
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	txnIDs := transactionIDs(transactions)
	settledByTarget, err := sumSettlementsByColumn(s.db, "target_txn_id", txnIDs)
	if err != nil {
		return nil, 0, err
	}
	settlesByRepayment, err := sumSettlementsByColumn(s.db, "repayment_txn_id", txnIDs)
	if err != nil {
		return nil, 0, err
	}
	tagsByTxn, err := s.tagsByTransaction(txnIDs)
	if err != nil {
		return nil, 0, err
	}

	// Accumulate oldest-first, then present newest-first. transactions is
	// newest-first, so walk it from the back.
	entries := make([]StatementEntry, len(transactions))
	var running int64
	for i := len(transactions) - 1; i >= 0; i-- {
		txn := transactions[i]
		running += txn.SignedAmount()

		settled := settledByTarget[txn.ID]
		entries[i] = StatementEntry{
			Transaction:    txn,
			RunningBalance: running,
			Tags:           tagsByTxn[txn.ID],
			SettledAmount:  settled,
			SettlesAmount:  settlesByRepayment[txn.ID],
			Status:         models.StatusFor(txn.Amount, settled),
		}
	}

	// The final accumulated balance is the person's total.
	return entries, running, nil
}

// TotalBalance returns the person's signed balance. Order-independent:
// it is a pure sum.
func (s *statementService) TotalBalance(personID string) (int64, error) {
	return s.persons.PersonBalance(personID)
}

// MonthlyStatement groups the person's statement into month buckets with
// a per-month net. Buckets appear in first-occurrence order over the
// newest-first entries, which is calendar-descending for date-sorted input.
func (s *statementService) MonthlyStatement(personID string) ([]MonthGroup, int64, error) {
	entries, total, err := s.PersonStatement(personID)
	if err != nil {
		return nil, 0, err
	}

	groups := make([]MonthGroup, 0)
	index := make(map[string]int)
	for _, entry := range entries {
		label := monthKey(entry.Transaction.Date)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, MonthGroup{Label: label})
		}
		groups[i].Net += entry.Transaction.SignedAmount()
		groups[i].Entries = append(groups[i].Entries, entry)
	}

	return groups, total, nil
}

// SmartStatement builds the report payload. UNSETTLED mode lists
// outstanding debts in both directions: GAVE entries that are OPEN or
// PARTIAL, and GOT entries that settle nothing (a GOT acting as a
// repayment is already accounted for, whatever its own status). When
// nothing is outstanding the statement switches to SETTLED mode and
// carries the latest transactions as a reference snapshot.
func (s *statementService) SmartStatement(personID string) (*SmartStatement, error) {
	entries, total, err := s.PersonStatement(personID)
	if err != nil {
		return nil, err
	}

	unsettled := make([]StatementEntry, 0, len(entries))
	for _, entry := range entries {
		switch entry.Transaction.Type {
		case models.TransactionTypeGave:
			if entry.Status != models.SettlementStatusSettled {
				unsettled = append(unsettled, entry)
			}
		case models.TransactionTypeGot:
			if entry.SettlesAmount == 0 {
				unsettled = append(unsettled, entry)
			}
		}
	}

	if len(unsettled) > 0 {
		return &SmartStatement{
			Mode:         SmartStatementModeUnsettled,
			Entries:      unsettled,
			TotalBalance: total,
		}, nil
	}

	if len(entries) > settledReferenceCount {
		entries = entries[:settledReferenceCount]
	}
	return &SmartStatement{
		Mode:         SmartStatementModeSettled,
		Entries:      entries,
		TotalBalance: total,
	}, nil
}

// monthKey derives the month bucket label in the device's local time zone.
func monthKey(date time.Time) string {
	return date.Local().Format("January 2006")
}

func (s *statementService) tagsByTransaction(txnIDs []string) (map[string][]models.Tag, error) {
	result := make(map[string][]models.Tag, len(txnIDs))
	if len(txnIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		models.Tag
		TransactionID string
	}
	err := s.db.Model(&models.Tag{}).
		Select("tags.*, transaction_tags.transaction_id").
		Joins("INNER JOIN transaction_tags ON transaction_tags.tag_id = tags.id").
		Where("transaction_tags.transaction_id IN ?", txnIDs).
		Order("tags.last_used_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, row := range rows {
		result[row.TransactionID] = append(result[row.TransactionID], row.Tag)
	}
	return result, nil
}
