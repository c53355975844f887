package models

import "time"

// TransactionType is the direction of a ledger entry, seen from the
// ledger owner: GAVE increases what the person owes, GOT decreases it.
type TransactionType string

const (
	TransactionTypeGave TransactionType = "GAVE"
	TransactionTypeGot  TransactionType = "GOT"
)

// Opposite returns the other direction. A GAVE is settled by GOTs and
// vice versa.
func (t TransactionType) Opposite() TransactionType {
	if t == TransactionTypeGave {
		return TransactionTypeGot
	}
	return TransactionTypeGave
}

// SignedAmount returns amount with the ledger sign applied to the given type.
func SignedAmount(txType TransactionType, amount int64) int64 {
	if txType == TransactionTypeGave {
		return amount
	}
	return -amount
}

// Transaction is a single ledger entry against a person. Amount is in the
// minor currency unit (paise) and is always positive; direction comes from
// Type. Date is the user-editable effective timestamp used for ordering
// and month grouping.
type Transaction struct {
	Base
	PersonID string          `gorm:"type:uuid;not null;index" json:"person_id"`
	Amount   int64           `gorm:"type:bigint;not null" json:"amount"`
	Type     TransactionType `gorm:"not null" json:"type"`
	Date     time.Time       `gorm:"not null;index" json:"date"`
	Note     string          `json:"note"`
	DueDate  *time.Time      `json:"due_date,omitempty"`

	// Relationships
	Person Person `gorm:"foreignKey:PersonID" json:"-"`
}

// SignedAmount returns the transaction's contribution to the person's balance.
func (t *Transaction) SignedAmount() int64 {
	return SignedAmount(t.Type, t.Amount)
}
