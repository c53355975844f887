package services

import (
	"testing"
	"time"

	"khata/internal/models"
	"khata/internal/testutil"
)

func TestCreatePerson(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)

		person, err := svc.CreatePerson("  Asha  ", " 5550001 ", false)
		testutil.AssertNoError(t, err)

		if person.ID == "" {
			t.Fatal("expected a generated person ID")
		}
		if person.Name != "Asha" {
			t.Errorf("expected trimmed name %q, got %q", "Asha", person.Name)
		}
		if person.Mobile != "5550001" {
			t.Errorf("expected trimmed mobile %q, got %q", "5550001", person.Mobile)
		}
	})

	t.Run("blank_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)

		_, err := svc.CreatePerson("   ", "", false)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("duplicate_name_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)

		_, err := svc.CreatePerson("Ravi", "", false)
		testutil.AssertNoError(t, err)

		_, err = svc.CreatePerson("ravi", "", false)
		testutil.AssertAppError(t, err, "DUPLICATE_PERSON_NAME")
	})

	t.Run("archived_person_still_blocks_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)

		person, err := svc.CreatePerson("Mira", "", false)
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, svc.ArchivePerson(person.ID))

		_, err = svc.CreatePerson("Mira", "", false)
		testutil.AssertAppError(t, err, "DUPLICATE_PERSON_NAME")
	})
}

func TestUpdatePerson(t *testing.T) {
	t.Run("rename_and_update_mobile", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)
		person := testutil.CreateTestPersonWithName(t, db, "Old Name")

		updated, err := svc.UpdatePerson(person.ID, "New Name", "5550002")
		testutil.AssertNoError(t, err)
		if updated.Name != "New Name" || updated.Mobile != "5550002" {
			t.Errorf("unexpected update result: %+v", updated)
		}
	})

	t.Run("recase_own_name_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)
		person := testutil.CreateTestPersonWithName(t, db, "asha")

		updated, err := svc.UpdatePerson(person.ID, "Asha", "")
		testutil.AssertNoError(t, err)
		if updated.Name != "Asha" {
			t.Errorf("expected recased name, got %q", updated.Name)
		}
	})

	t.Run("rename_to_taken_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)
		testutil.CreateTestPersonWithName(t, db, "Taken")
		person := testutil.CreateTestPersonWithName(t, db, "Free")

		_, err := svc.UpdatePerson(person.ID, "taken", "")
		testutil.AssertAppError(t, err, "DUPLICATE_PERSON_NAME")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)

		_, err := svc.UpdatePerson("missing", "Name", "")
		testutil.AssertAppError(t, err, "PERSON_NOT_FOUND")
	})
}

func TestArchivePerson(t *testing.T) {
	t.Run("archive_and_unarchive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)
		person := testutil.CreateTestPerson(t, db)

		testutil.AssertNoError(t, svc.ArchivePerson(person.ID))
		reloaded, err := svc.GetPersonByID(person.ID)
		testutil.AssertNoError(t, err)
		if !reloaded.IsArchived {
			t.Error("expected person to be archived")
		}

		testutil.AssertNoError(t, svc.UnarchivePerson(person.ID))
		reloaded, err = svc.GetPersonByID(person.ID)
		testutil.AssertNoError(t, err)
		if reloaded.IsArchived {
			t.Error("expected person to be unarchived")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)

		err := svc.ArchivePerson("missing")
		testutil.AssertAppError(t, err, "PERSON_NOT_FOUND")
	})
}

func TestListPersons(t *testing.T) {
	t.Run("balances_and_recency_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)

		quiet := testutil.CreateTestPersonWithName(t, db, "Quiet")
		busy := testutil.CreateTestPersonWithName(t, db, "Busy")

		testutil.CreateTestTransactionOn(t, db, quiet.ID, models.TransactionTypeGave, 1000,
			time.Date(2026, time.January, 10, 0, 0, 0, 0, time.Local))
		testutil.CreateTestTransactionOn(t, db, busy.ID, models.TransactionTypeGave, 700,
			time.Date(2026, time.February, 1, 0, 0, 0, 0, time.Local))
		testutil.CreateTestTransactionOn(t, db, busy.ID, models.TransactionTypeGot, 200,
			time.Date(2026, time.February, 15, 0, 0, 0, 0, time.Local))

		rows, err := svc.ListPersons(false)
		testutil.AssertNoError(t, err)

		if len(rows) != 2 {
			t.Fatalf("expected 2 persons, got %d", len(rows))
		}
		if rows[0].Name != "Busy" {
			t.Errorf("expected most recently active first, got %q", rows[0].Name)
		}
		if rows[0].Balance != 500 {
			t.Errorf("expected Busy balance 500, got %d", rows[0].Balance)
		}
		if rows[1].Balance != 1000 {
			t.Errorf("expected Quiet balance 1000, got %d", rows[1].Balance)
		}
		if rows[0].LastActivityAt == nil {
			t.Error("expected last activity timestamp to be set")
		}
	})

	t.Run("archived_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)

		active := testutil.CreateTestPerson(t, db)
		archived := testutil.CreateTestPerson(t, db)
		testutil.AssertNoError(t, svc.ArchivePerson(archived.ID))

		rows, err := svc.ListPersons(false)
		testutil.AssertNoError(t, err)
		if len(rows) != 1 || rows[0].ID != active.ID {
			t.Fatalf("expected only the active person, got %+v", rows)
		}

		rows, err = svc.ListPersons(true)
		testutil.AssertNoError(t, err)
		if len(rows) != 1 || rows[0].ID != archived.ID {
			t.Fatalf("expected only the archived person, got %+v", rows)
		}
	})
}

func TestDeletePerson(t *testing.T) {
	t.Run("cascades_to_transactions_settlements_and_links", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)
		person := testutil.CreateTestPerson(t, db)
		bystander := testutil.CreateTestPerson(t, db)

		gave := testutil.CreateTestTransaction(t, db, person.ID, models.TransactionTypeGave, 500)
		got := testutil.CreateTestTransaction(t, db, person.ID, models.TransactionTypeGot, 500)
		testutil.CreateTestSettlement(t, db, got.ID, gave.ID, 500)
		tag := testutil.CreateTestTag(t, db)
		if err := db.Create(&models.TransactionTag{TransactionID: gave.ID, TagID: tag.ID}).Error; err != nil {
			t.Fatalf("failed to link tag: %v", err)
		}
		keep := testutil.CreateTestTransaction(t, db, bystander.ID, models.TransactionTypeGave, 100)

		testutil.AssertNoError(t, svc.DeletePerson(person.ID))

		_, err := svc.GetPersonByID(person.ID)
		testutil.AssertAppError(t, err, "PERSON_NOT_FOUND")

		var txnCount, settlementCount, linkCount, tagCount int64
		db.Model(&models.Transaction{}).Where("person_id = ?", person.ID).Count(&txnCount)
		db.Model(&models.Settlement{}).Count(&settlementCount)
		db.Model(&models.TransactionTag{}).Count(&linkCount)
		db.Model(&models.Tag{}).Count(&tagCount)

		if txnCount != 0 || settlementCount != 0 || linkCount != 0 {
			t.Errorf("expected cascade to remove owned rows, got txns=%d settlements=%d links=%d",
				txnCount, settlementCount, linkCount)
		}
		if tagCount != 1 {
			t.Errorf("expected the tag itself to survive, got %d", tagCount)
		}

		// Unrelated transactions are untouched.
		var keptTxn models.Transaction
		if err := db.Where("id = ?", keep.ID).First(&keptTxn).Error; err != nil {
			t.Errorf("bystander transaction should survive: %v", err)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)

		err := svc.DeletePerson("missing")
		testutil.AssertAppError(t, err, "PERSON_NOT_FOUND")
	})
}

func TestReevaluateAutoArchive(t *testing.T) {
	t.Run("temporary_person_at_zero_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)
		person := testutil.CreateTestTemporaryPerson(t, db)
		testutil.CreateTestTransaction(t, db, person.ID, models.TransactionTypeGave, 500)
		testutil.CreateTestTransaction(t, db, person.ID, models.TransactionTypeGot, 500)

		testutil.AssertNoError(t, svc.ReevaluateAutoArchive(db, person.ID))

		reloaded, err := svc.GetPersonByID(person.ID)
		testutil.AssertNoError(t, err)
		if !reloaded.IsArchived {
			t.Error("expected temporary person at zero balance to be auto-archived")
		}
	})

	t.Run("temporary_person_with_outstanding_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)
		person := testutil.CreateTestTemporaryPerson(t, db)
		testutil.CreateTestTransaction(t, db, person.ID, models.TransactionTypeGave, 500)

		testutil.AssertNoError(t, svc.ReevaluateAutoArchive(db, person.ID))

		reloaded, err := svc.GetPersonByID(person.ID)
		testutil.AssertNoError(t, err)
		if reloaded.IsArchived {
			t.Error("person with outstanding balance must not be auto-archived")
		}
	})

	t.Run("regular_person_never_auto_archived", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)
		person := testutil.CreateTestPerson(t, db)

		testutil.AssertNoError(t, svc.ReevaluateAutoArchive(db, person.ID))

		reloaded, err := svc.GetPersonByID(person.ID)
		testutil.AssertNoError(t, err)
		if reloaded.IsArchived {
			t.Error("regular person must not be auto-archived")
		}
	})

	t.Run("missing_person_is_ignored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)

		testutil.AssertNoError(t, svc.ReevaluateAutoArchive(db, "missing"))
	})
}

func TestPersonBalance(t *testing.T) {
	t.Run("signed_sum", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)
		person := testutil.CreateTestPerson(t, db)
		testutil.CreateTestTransaction(t, db, person.ID, models.TransactionTypeGave, 1200)
		testutil.CreateTestTransaction(t, db, person.ID, models.TransactionTypeGot, 700)

		balance, err := svc.PersonBalance(person.ID)
		testutil.AssertNoError(t, err)
		if balance != 500 {
			t.Errorf("expected balance 500, got %d", balance)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonService(db)

		_, err := svc.PersonBalance("missing")
		testutil.AssertAppError(t, err, "PERSON_NOT_FOUND")
	})
}
