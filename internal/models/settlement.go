package models

import "time"

// Settlement allocates part of a repayment transaction against a target
// transaction of the opposite type on the same person. A repayment may be
// split across many targets and a target may be paid down by many
// repayments; the allocated amounts on each side must never exceed the
// transaction's own amount.
type Settlement struct {
	RepaymentTxnID  string    `gorm:"type:uuid;primaryKey" json:"repayment_txn_id"`
	TargetTxnID     string    `gorm:"type:uuid;primaryKey" json:"target_txn_id"`
	AllocatedAmount int64     `gorm:"type:bigint;not null" json:"allocated_amount"`
	CreatedAt       time.Time `json:"created_at"`
}

// SettlementStatus is derived per transaction from the settlements that
// target it. It is never persisted; it is recomputed from the allocation
// rows so it can move backward when settlements are reduced or removed.
type SettlementStatus string

const (
	SettlementStatusOpen    SettlementStatus = "OPEN"
	SettlementStatusPartial SettlementStatus = "PARTIAL"
	SettlementStatusSettled SettlementStatus = "SETTLED"
)

// StatusFor derives the settlement status of a transaction of the given
// amount from the total allocated against it.
func StatusFor(amount, settledAmount int64) SettlementStatus {
	switch {
	case settledAmount >= amount:
		return SettlementStatusSettled
	case settledAmount > 0:
		return SettlementStatusPartial
	default:
		return SettlementStatusOpen
	}
}
