package services

import (
	"fmt"

	"gorm.io/gorm"

	apperrors "khata/internal/errors"
	"khata/internal/models"
)

// settlementService implements the settlement allocation engine.
type settlementService struct {
	db *gorm.DB
}

// NewSettlementService creates a new SettlementServicer.
func NewSettlementService(db *gorm.DB) SettlementServicer {
	return &settlementService{db: db}
}

// SetSettlementsForRepayment replaces the repayment's settlement rows with
// the given allocations. The whole replace runs in one database
// transaction, so a rejected allocation set leaves the prior rows intact.
func (s *settlementService) SetSettlementsForRepayment(repaymentTxnID string, allocations []Allocation) error {
	repayment, err := findTransaction(s.db, repaymentTxnID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.ApplyAllocations(tx, repayment, allocations)
	})
}

// ApplyAllocations deletes every settlement keyed by the repayment and
// inserts the new list. Validation covers the complete resulting
// allocation set: a per-target total that only breaks across rows is still
// caught, because the target's surviving settlements are re-summed after
// the delete.
func (s *settlementService) ApplyAllocations(tx *gorm.DB, repayment *models.Transaction, allocations []Allocation) error {
	if err := tx.Where("repayment_txn_id = ?", repayment.ID).
		Delete(&models.Settlement{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(allocations) == 0 {
		return nil
	}

	var total int64
	seen := make(map[string]bool, len(allocations))
	rows := make([]models.Settlement, 0, len(allocations))

	for _, alloc := range allocations {
		if alloc.Amount <= 0 {
			return apperrors.WithMessage(apperrors.ErrAllocation, "allocated amount must be greater than zero")
		}
		if seen[alloc.TargetTxnID] {
			return apperrors.WithMessage(apperrors.ErrAllocation, "duplicate target in allocation set")
		}
		seen[alloc.TargetTxnID] = true

		total += alloc.Amount
		if total > repayment.Amount {
			return apperrors.WithMessage(apperrors.ErrAllocation, "repayment cannot allocate more than its own amount")
		}

		target, err := findTransaction(tx, alloc.TargetTxnID)
		if err != nil {
			return err
		}
		if target.PersonID != repayment.PersonID {
			return apperrors.WithMessage(apperrors.ErrAllocation, "target transaction belongs to a different person")
		}
		if target.Type != repayment.Type.Opposite() {
			return apperrors.WithMessage(apperrors.ErrAllocation, "target transaction must be of the opposite type")
		}

		settled, err := settledAmountWithDB(tx, target.ID)
		if err != nil {
			return err
		}
		if settled+alloc.Amount > target.Amount {
			return apperrors.WithMessage(apperrors.ErrAllocation,
				fmt.Sprintf("allocation exceeds target: %d already settled of %d", settled, target.Amount))
		}

		rows = append(rows, models.Settlement{
			RepaymentTxnID:  repayment.ID,
			TargetTxnID:     target.ID,
			AllocatedAmount: alloc.Amount,
		})
	}

	if err := tx.Create(&rows).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SettlementsForRepayment lists the settlement rows keyed by a repayment,
// e.g. to prefill the picker when editing.
func (s *settlementService) SettlementsForRepayment(repaymentTxnID string) ([]models.Settlement, error) {
	var rows []models.Settlement
	if err := s.db.Where("repayment_txn_id = ?", repaymentTxnID).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// SettledAmount returns the total allocated against a transaction as a target.
func (s *settlementService) SettledAmount(txnID string) (int64, error) {
	return settledAmountWithDB(s.db, txnID)
}

// SettlesAmount returns the total a transaction has allocated as a repayment.
func (s *settlementService) SettlesAmount(txnID string) (int64, error) {
	var sum int64
	err := s.db.Model(&models.Settlement{}).
		Select("COALESCE(SUM(allocated_amount), 0)").
		Where("repayment_txn_id = ?", txnID).
		Scan(&sum).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sum, nil
}

func settledAmountWithDB(tx *gorm.DB, txnID string) (int64, error) {
	var sum int64
	err := tx.Model(&models.Settlement{}).
		Select("COALESCE(SUM(allocated_amount), 0)").
		Where("target_txn_id = ?", txnID).
		Scan(&sum).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sum, nil
}

// EligibleTargets lists the person's opposite-type transactions whose
// status is OPEN or PARTIAL, most recent first. The recency ordering is
// deliberate: the picker surfaces the latest debts, not the largest.
func (s *settlementService) EligibleTargets(personID string, txnType models.TransactionType) ([]TargetOption, error) {
	var candidates []models.Transaction
	if err := s.db.
		Where("person_id = ? AND type = ?", personID, txnType.Opposite()).
		Order("date DESC, id DESC").
		Find(&candidates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	settledByTarget, err := sumSettlementsByColumn(s.db, "target_txn_id", transactionIDs(candidates))
	if err != nil {
		return nil, err
	}

	options := make([]TargetOption, 0, len(candidates))
	for _, txn := range candidates {
		settled := settledByTarget[txn.ID]
		if settled >= txn.Amount {
			continue
		}
		options = append(options, TargetOption{
			Transaction:     txn,
			SettledAmount:   settled,
			RemainingAmount: txn.Amount - settled,
			Status:          models.StatusFor(txn.Amount, settled),
		})
	}
	return options, nil
}

// DefaultAllocation is the picker's suggestion when a target is toggled on
// without an explicit amount: as much of the target's remainder as the
// repayment still has unallocated. Callers remain free to pass any valid
// explicit amount instead.
func DefaultAllocation(targetRemaining, repaymentUnallocated int64) int64 {
	if targetRemaining < 0 || repaymentUnallocated < 0 {
		return 0
	}
	if targetRemaining < repaymentUnallocated {
		return targetRemaining
	}
	return repaymentUnallocated
}

// sumSettlementsByColumn groups settlement totals by the given key column
// (target_txn_id or repayment_txn_id) over the listed transaction IDs.
func sumSettlementsByColumn(tx *gorm.DB, column string, txnIDs []string) (map[string]int64, error) {
	sums := make(map[string]int64, len(txnIDs))
	if len(txnIDs) == 0 {
		return sums, nil
	}

	var rows []struct {
		TxnID string
		Total int64
	}
	err := tx.Model(&models.Settlement{}).
		Select(column+" AS txn_id, SUM(allocated_amount) AS total").
		Where(column+" IN ?", txnIDs).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, row := range rows {
		sums[row.TxnID] = row.Total
	}
	return sums, nil
}

func transactionIDs(txns []models.Transaction) []string {
	ids := make([]string, len(txns))
	for i := range txns {
		ids[i] = txns[i].ID
	}
	return ids
}
