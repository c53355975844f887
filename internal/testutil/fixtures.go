package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"khata/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestPerson creates a regular person with a unique name.
func CreateTestPerson(t *testing.T, db *gorm.DB) *models.Person {
	t.Helper()
	return CreateTestPersonWithName(t, db, fmt.Sprintf("Test Person %d", nextID()))
}

// CreateTestPersonWithName creates a person with the given name.
func CreateTestPersonWithName(t *testing.T, db *gorm.DB, name string) *models.Person {
	t.Helper()

	person := &models.Person{
		Name: name,
	}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("failed to create test person: %v", err)
	}
	return person
}

// CreateTestTemporaryPerson creates a person flagged as temporary.
func CreateTestTemporaryPerson(t *testing.T, db *gorm.DB) *models.Person {
	t.Helper()

	person := &models.Person{
		Name:        fmt.Sprintf("Temp Person %d", nextID()),
		IsTemporary: true,
	}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("failed to create test temporary person: %v", err)
	}
	return person
}

// CreateTestTransaction creates a transaction of the given type and amount
// (in minor units) dated now.
func CreateTestTransaction(t *testing.T, db *gorm.DB, personID string, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()
	return CreateTestTransactionOn(t, db, personID, txType, amount, time.Now())
}

// CreateTestTransactionOn creates a transaction with an explicit date.
func CreateTestTransactionOn(t *testing.T, db *gorm.DB, personID string, txType models.TransactionType, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		PersonID: personID,
		Type:     txType,
		Amount:   amount,
		Date:     date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestTag creates a tag with a unique name.
func CreateTestTag(t *testing.T, db *gorm.DB) *models.Tag {
	t.Helper()
	return CreateTestTagWithName(t, db, fmt.Sprintf("tag-%d", nextID()))
}

// CreateTestTagWithName creates a tag with the given name.
func CreateTestTagWithName(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()

	tag := &models.Tag{
		Name:       name,
		LastUsedAt: time.Now(),
	}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateTestSettlement links a repayment to a target with the given allocation.
func CreateTestSettlement(t *testing.T, db *gorm.DB, repaymentTxnID, targetTxnID string, amount int64) *models.Settlement {
	t.Helper()

	settlement := &models.Settlement{
		RepaymentTxnID:  repaymentTxnID,
		TargetTxnID:     targetTxnID,
		AllocatedAmount: amount,
	}
	if err := db.Create(settlement).Error; err != nil {
		t.Fatalf("failed to create test settlement: %v", err)
	}
	return settlement
}
