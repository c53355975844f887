package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "khata/internal/errors"
	"khata/internal/models"
	"khata/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db          *gorm.DB
	persons     PersonServicer
	tags        TagServicer
	settlements SettlementServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, persons PersonServicer, tags TagServicer, settlements SettlementServicer) TransactionServicer {
	return &transactionService{
		db:          db,
		persons:     persons,
		tags:        tags,
		settlements: settlements,
	}
}

// CreateTransaction records a plain ledger entry against a person.
func (s *transactionService) CreateTransaction(
	personID string,
	amount int64,
	txType models.TransactionType,
	note string,
	date time.Time,
	dueDate *time.Time,
) (*models.Transaction, error) {
	return s.CreateTransactionWithSettlements(personID, amount, txType, note, date, dueDate, nil, nil)
}

// CreateTransactionWithSettlements records a ledger entry together with its
// tags and settlement allocations as one atomic unit: transaction insert,
// tags, settlements, auto-archive check, in that order. A failure at any
// step rolls the whole batch back.
func (s *transactionService) CreateTransactionWithSettlements(
	personID string,
	amount int64,
	txType models.TransactionType,
	note string,
	date time.Time,
	dueDate *time.Time,
	tagIDs []string,
	allocations []Allocation,
) (*models.Transaction, error) {
	if err := validateTransactionInput(amount, txType, date); err != nil {
		return nil, err
	}

	if _, err := s.persons.GetPersonByID(personID); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		PersonID: personID,
		Amount:   amount,
		Type:     txType,
		Date:     date,
		Note:     note,
		DueDate:  dueDate,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if len(tagIDs) > 0 {
			if err := s.tags.ApplyTags(tx, transaction.ID, tagIDs); err != nil {
				return err
			}
		}

		if len(allocations) > 0 {
			if err := s.settlements.ApplyAllocations(tx, transaction, allocations); err != nil {
				return err
			}
		}

		return s.persons.ReevaluateAutoArchive(tx, personID)
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetTransactionByID retrieves a transaction by ID
func (s *transactionService) GetTransactionByID(txnID string) (*models.Transaction, error) {
	return findTransaction(s.db, txnID)
}

// GetPersonTransactions retrieves a paginated list of a person's
// transactions, newest first. Ties on date break by id descending, which
// is insertion order because ids are time-ordered UUIDv7.
func (s *transactionService) GetPersonTransactions(personID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if _, err := s.persons.GetPersonByID(personID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("person_id = ?", personID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateTransaction edits a transaction's amount, type, date, note, and
// due date, then re-evaluates auto-archive. Edits that would break
// existing settlements are rejected: the amount cannot drop below what is
// already settled against or allocated by the row, and the direction
// cannot flip while settlements reference it.
func (s *transactionService) UpdateTransaction(
	txnID string,
	amount int64,
	txType models.TransactionType,
	note string,
	date time.Time,
	dueDate *time.Time,
) (*models.Transaction, error) {
	if err := validateTransactionInput(amount, txType, date); err != nil {
		return nil, err
	}

	transaction, err := findTransaction(s.db, txnID)
	if err != nil {
		return nil, err
	}

	settled, err := s.settlements.SettledAmount(txnID)
	if err != nil {
		return nil, err
	}
	settles, err := s.settlements.SettlesAmount(txnID)
	if err != nil {
		return nil, err
	}

	if txType != transaction.Type && (settled > 0 || settles > 0) {
		return nil, apperrors.WithMessage(apperrors.ErrAllocation, "cannot change direction of a transaction with settlements")
	}
	if amount < settled {
		return nil, apperrors.WithMessage(apperrors.ErrAllocation, "amount cannot be less than the total settled against this transaction")
	}
	if amount < settles {
		return nil, apperrors.WithMessage(apperrors.ErrAllocation, "amount cannot be less than the total this transaction settles")
	}

	transaction.Amount = amount
	transaction.Type = txType
	transaction.Note = note
	transaction.Date = date
	transaction.DueDate = dueDate

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.persons.ReevaluateAutoArchive(tx, transaction.PersonID)
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// DeleteTransaction removes a transaction, cascading to its tag links and
// to every settlement referencing it as repayment or target, then
// re-evaluates the owner's auto-archive eligibility.
func (s *transactionService) DeleteTransaction(txnID string) error {
	transaction, err := findTransaction(s.db, txnID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("repayment_txn_id = ? OR target_txn_id = ?", txnID, txnID).
			Delete(&models.Settlement{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("transaction_id = ?", txnID).
			Delete(&models.TransactionTag{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.persons.ReevaluateAutoArchive(tx, transaction.PersonID)
	})
}

func validateTransactionInput(amount int64, txType models.TransactionType, date time.Time) error {
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than zero")
	}
	if txType != models.TransactionTypeGave && txType != models.TransactionTypeGot {
		return apperrors.WithMessage(apperrors.ErrValidation, "type must be GAVE or GOT")
	}
	if date.IsZero() {
		return apperrors.WithMessage(apperrors.ErrValidation, "date is required")
	}
	if date.After(time.Now()) {
		return apperrors.WithMessage(apperrors.ErrValidation, "date must not be in the future")
	}
	return nil
}

func findTransaction(tx *gorm.DB, txnID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := tx.Where("id = ?", txnID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}
