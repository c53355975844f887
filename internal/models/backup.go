package models

import "time"

// BackupVersion is the current snapshot format version.
const BackupVersion = 1

// BackupSnapshot is a full serializable copy of the ledger, used for
// export and restore. Restore replaces all prior state with the snapshot
// contents in dependency order: persons, transactions, tags, tag links,
// settlements.
type BackupSnapshot struct {
	Version         int              `json:"version"`
	CreatedAt       time.Time        `json:"created_at"`
	Persons         []Person         `json:"persons"`
	Transactions    []Transaction    `json:"transactions"`
	Tags            []Tag            `json:"tags"`
	TransactionTags []TransactionTag `json:"transaction_tags"`
	Settlements     []Settlement     `json:"settlements"`
}
