package models

import "time"

// Tag is a free-form label applied to transactions. LastUsedAt is bumped
// every time the tag is applied so that "recent tags" suggestions rank by
// recency of use rather than creation.
type Tag struct {
	Base
	Name       string    `gorm:"not null" json:"name"`
	LastUsedAt time.Time `gorm:"not null;index" json:"last_used_at"`
}

// TransactionTag links a transaction to a tag. Rows are replaced wholesale
// when the tag set for a transaction changes, and removed when either side
// is deleted.
type TransactionTag struct {
	TransactionID string    `gorm:"type:uuid;primaryKey" json:"transaction_id"`
	TagID         string    `gorm:"type:uuid;primaryKey" json:"tag_id"`
	CreatedAt     time.Time `json:"created_at"`
}
