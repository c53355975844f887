package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "khata/internal/errors"
	"khata/internal/models"
)

// tagService handles tag-related business logic.
type tagService struct {
	db          *gorm.DB
	maxPerTxn   int
	recentLimit int
}

// NewTagService creates a new TagServicer. maxPerTxn caps how many tags a
// single transaction may carry; recentLimit caps the recent-tags
// suggestion list.
func NewTagService(db *gorm.DB, maxPerTxn, recentLimit int) TagServicer {
	return &tagService{db: db, maxPerTxn: maxPerTxn, recentLimit: recentLimit}
}

// CreateTag creates a tag from free text input. Names are unique
// case-insensitively among non-deleted tags.
func (s *tagService) CreateTag(name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "tag name must not be blank")
	}

	taken, err := s.nameTaken(name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateTagName
	}

	tag := &models.Tag{Name: name, LastUsedAt: time.Now()}
	if err := s.db.Create(tag).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tag, nil
}

// RenameTag changes a tag's name, keeping the case-insensitive uniqueness rule.
func (s *tagService) RenameTag(tagID, name string) (*models.Tag, error) {
	tag, err := s.findTag(tagID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "tag name must not be blank")
	}

	taken, err := s.nameTaken(name, tagID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateTagName
	}

	tag.Name = name
	if err := s.db.Save(tag).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tag, nil
}

// DeleteTag removes a tag and its transaction links. Transactions are
// never affected.
func (s *tagService) DeleteTag(tagID string) error {
	tag, err := s.findTag(tagID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", tagID).Delete(&models.TransactionTag{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(tag).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// AllTags lists every tag, most recently used first.
func (s *tagService) AllTags() ([]models.Tag, error) {
	return s.listTags(0)
}

// RecentTags lists the most recently used tags for the suggestion row.
func (s *tagService) RecentTags() ([]models.Tag, error) {
	return s.listTags(s.recentLimit)
}

func (s *tagService) listTags(limit int) ([]models.Tag, error) {
	q := s.db.Order("last_used_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var tags []models.Tag
	if err := q.Find(&tags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tags, nil
}

// TagsForTransaction lists the tags linked to a transaction.
func (s *tagService) TagsForTransaction(txnID string) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.Model(&models.Tag{}).
		Joins("INNER JOIN transaction_tags ON transaction_tags.tag_id = tags.id").
		Where("transaction_tags.transaction_id = ?", txnID).
		Order("tags.last_used_at DESC").
		Find(&tags).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tags, nil
}

// SetTagsForTransaction replaces the transaction's tag set wholesale with
// the given list; an empty list clears all tags.
func (s *tagService) SetTagsForTransaction(txnID string, tagIDs []string) error {
	if _, err := findTransaction(s.db, txnID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.ApplyTags(tx, txnID, tagIDs)
	})
}

// ApplyTags is the full-replace primitive: delete all links for the
// transaction, insert the new set, and bump LastUsedAt on every tag in it.
func (s *tagService) ApplyTags(tx *gorm.DB, txnID string, tagIDs []string) error {
	tagIDs = dedupe(tagIDs)
	if len(tagIDs) > s.maxPerTxn {
		return apperrors.ErrTooManyTags
	}

	if err := tx.Where("transaction_id = ?", txnID).
		Delete(&models.TransactionTag{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(tagIDs) == 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Tag{}).Where("id IN ?", tagIDs).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count != int64(len(tagIDs)) {
		return apperrors.ErrTagNotFound
	}

	links := make([]models.TransactionTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, models.TransactionTag{TransactionID: txnID, TagID: tagID})
	}
	if err := tx.Create(&links).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := tx.Model(&models.Tag{}).
		Where("id IN ?", tagIDs).
		Update("last_used_at", time.Now()).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (s *tagService) findTag(tagID string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.Where("id = ?", tagID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tag, nil
}

func (s *tagService) nameTaken(name, excludeID string) (bool, error) {
	q := s.db.Model(&models.Tag{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}
