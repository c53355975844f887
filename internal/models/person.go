package models

import "time"

// Person is a ledger counterparty. Archived persons are hidden from the
// default listing but keep their full transaction history. Temporary
// persons are archived automatically once their balance returns to zero.
type Person struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Mobile      string `json:"mobile,omitempty"`
	IsTemporary bool   `gorm:"not null;default:false" json:"is_temporary"`
	IsArchived  bool   `gorm:"not null;default:false;index" json:"is_archived"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:PersonID" json:"transactions,omitempty"`
}

// PersonWithBalance is a listing row: a person plus their signed balance
// (positive means they owe the ledger owner) and most recent activity.
type PersonWithBalance struct {
	Person
	Balance        int64      `json:"balance"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}
