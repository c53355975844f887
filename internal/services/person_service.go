package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "khata/internal/errors"
	"khata/internal/logger"
	"khata/internal/models"
)

// personService handles person-related business logic.
type personService struct {
	db *gorm.DB
}

// NewPersonService creates a new PersonServicer.
func NewPersonService(db *gorm.DB) PersonServicer {
	return &personService{db: db}
}

// CreatePerson creates a new person. The name must be non-blank after
// trimming and unique among non-deleted persons, archived included.
func (s *personService) CreatePerson(name, mobile string, isTemporary bool) (*models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "person name must not be blank")
	}

	exists, err := s.PersonExists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicatePersonName
	}

	person := &models.Person{
		Name:        name,
		Mobile:      strings.TrimSpace(mobile),
		IsTemporary: isTemporary,
	}

	if err := s.db.Create(person).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return person, nil
}

// GetPersonByID retrieves a person by ID
func (s *personService) GetPersonByID(personID string) (*models.Person, error) {
	var person models.Person
	if err := s.db.Where("id = ?", personID).First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPersonNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &person, nil
}

// UpdatePerson renames a person and/or updates their mobile number
func (s *personService) UpdatePerson(personID, name, mobile string) (*models.Person, error) {
	person, err := s.GetPersonByID(personID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "person name must not be blank")
	}

	if !strings.EqualFold(name, person.Name) {
		exists, err := s.PersonExists(name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.ErrDuplicatePersonName
		}
	}

	person.Name = name
	person.Mobile = strings.TrimSpace(mobile)
	if err := s.db.Save(person).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return person, nil
}

// PersonExists reports whether a non-deleted person with this name exists,
// matched case-insensitively and regardless of archive status.
func (s *personService) PersonExists(name string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Person{}).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// ArchivePerson hides a person from the default listing
func (s *personService) ArchivePerson(personID string) error {
	return s.setArchived(personID, true)
}

// UnarchivePerson returns a person to the default listing
func (s *personService) UnarchivePerson(personID string) error {
	return s.setArchived(personID, false)
}

func (s *personService) setArchived(personID string, archived bool) error {
	res := s.db.Model(&models.Person{}).Where("id = ?", personID).Update("is_archived", archived)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrPersonNotFound
	}
	return nil
}

// DeletePerson permanently removes a person and everything they own:
// settlements referencing their transactions, the transactions' tag links,
// the transactions, then the person, in one database transaction.
func (s *personService) DeletePerson(personID string) error {
	if _, err := s.GetPersonByID(personID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var txnIDs []string
		if err := tx.Model(&models.Transaction{}).
			Where("person_id = ?", personID).
			Pluck("id", &txnIDs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if len(txnIDs) > 0 {
			if err := tx.Where("repayment_txn_id IN ? OR target_txn_id IN ?", txnIDs, txnIDs).
				Delete(&models.Settlement{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := tx.Where("transaction_id IN ?", txnIDs).
				Delete(&models.TransactionTag{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := tx.Where("person_id = ?", personID).
				Delete(&models.Transaction{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Where("id = ?", personID).Delete(&models.Person{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// ListPersons returns persons with their signed balance and last activity
// timestamp, most recently active first. archived selects which half of
// the ledger to list.
func (s *personService) ListPersons(archived bool) ([]models.PersonWithBalance, error) {
	var rows []models.PersonWithBalance
	err := s.db.Model(&models.Person{}).
		Select("people.*, "+
			"COALESCE(SUM(CASE WHEN transactions.type = 'GAVE' THEN transactions.amount ELSE -transactions.amount END), 0) AS balance, "+
			"MAX(transactions.date) AS last_activity_at").
		Joins("LEFT JOIN transactions ON transactions.person_id = people.id AND transactions.deleted_at IS NULL").
		Where("people.is_archived = ?", archived).
		Group("people.id").
		Order("MAX(transactions.date) DESC, people.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// PersonBalance returns the signed sum of the person's transactions.
func (s *personService) PersonBalance(personID string) (int64, error) {
	if _, err := s.GetPersonByID(personID); err != nil {
		return 0, err
	}
	return personBalanceWithDB(s.db, personID)
}

func personBalanceWithDB(tx *gorm.DB, personID string) (int64, error) {
	var balance int64
	err := tx.Model(&models.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = 'GAVE' THEN amount ELSE -amount END), 0)").
		Where("person_id = ?", personID).
		Scan(&balance).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return balance, nil
}

// ReevaluateAutoArchive archives a temporary person whose balance is back
// to zero. Missing persons are ignored so that cascaded deletes can call
// this unconditionally.
func (s *personService) ReevaluateAutoArchive(tx *gorm.DB, personID string) error {
	var person models.Person
	if err := tx.Where("id = ?", personID).First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !person.IsTemporary || person.IsArchived {
		return nil
	}

	balance, err := personBalanceWithDB(tx, personID)
	if err != nil {
		return err
	}
	if balance != 0 {
		return nil
	}

	if err := tx.Model(&person).Update("is_archived", true).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Infow("auto-archived settled temporary person", "person_id", personID)
	return nil
}
