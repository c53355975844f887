package services

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "khata/internal/errors"
	"khata/internal/logger"
	"khata/internal/models"
)

// backupService exports and restores full ledger snapshots.
type backupService struct {
	db *gorm.DB
}

// NewBackupService creates a new BackupServicer.
func NewBackupService(db *gorm.DB) BackupServicer {
	return &backupService{db: db}
}

// Export returns a snapshot of the whole ledger: persons, transactions,
// tags, tag links, and settlements, with a format version and timestamp.
func (s *backupService) Export() (*models.BackupSnapshot, error) {
	snapshot := &models.BackupSnapshot{
		Version:         models.BackupVersion,
		CreatedAt:       time.Now(),
		Persons:         []models.Person{},
		Transactions:    []models.Transaction{},
		Tags:            []models.Tag{},
		TransactionTags: []models.TransactionTag{},
		Settlements:     []models.Settlement{},
	}

	if err := s.db.Find(&snapshot.Persons).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Find(&snapshot.Transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Find(&snapshot.Tags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Find(&snapshot.TransactionTags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Find(&snapshot.Settlements).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return snapshot, nil
}

// Restore replaces all ledger state with the snapshot's contents. Deletes
// run dependents-first (settlements, tag links, tags, transactions,
// persons), inserts run in dependency order, all in one database
// transaction so a malformed snapshot cannot leave a half-restored ledger.
func (s *backupService) Restore(snapshot *models.BackupSnapshot) error {
	if snapshot == nil {
		return apperrors.WithMessage(apperrors.ErrRestoreFormat, "empty backup payload")
	}
	if snapshot.Version != models.BackupVersion {
		return apperrors.WithMessage(apperrors.ErrRestoreFormat, "unsupported backup version")
	}
	if snapshot.Persons == nil || snapshot.Transactions == nil || snapshot.Tags == nil ||
		snapshot.TransactionTags == nil || snapshot.Settlements == nil {
		return apperrors.WithMessage(apperrors.ErrRestoreFormat, "backup is missing required collections")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		wipe := []interface{}{
			&models.Settlement{},
			&models.TransactionTag{},
			&models.Tag{},
			&models.Transaction{},
			&models.Person{},
		}
		for _, model := range wipe {
			if err := tx.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if len(snapshot.Persons) > 0 {
			// Omit associations: transactions are restored from their own
			// collection, not through the person rows.
			if err := tx.Omit(clause.Associations).CreateInBatches(snapshot.Persons, 200).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if len(snapshot.Transactions) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(snapshot.Transactions, 200).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if len(snapshot.Tags) > 0 {
			if err := tx.CreateInBatches(snapshot.Tags, 200).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if len(snapshot.TransactionTags) > 0 {
			if err := tx.CreateInBatches(snapshot.TransactionTags, 200).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if len(snapshot.Settlements) > 0 {
			if err := tx.CreateInBatches(snapshot.Settlements, 200).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Get().Infow("ledger restored from backup",
		"persons", len(snapshot.Persons),
		"transactions", len(snapshot.Transactions),
		"settlements", len(snapshot.Settlements),
	)
	return nil
}
