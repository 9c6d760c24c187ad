package indexer

import (
	"context"

	"gorm.io/gorm"

	"github.com/hearth-collective/hearth/app/models"
)

// EntryStore persists flattened index entries, one row per field.
type EntryStore interface {
	Put(ctx context.Context, userID string, entry Entry) error
	Get(ctx context.Context, userID string) (Entry, error)
	FindUserIDs(ctx context.Context, field, value string) ([]string, error)
}

type gormEntryStore struct {
	db *gorm.DB
}

// NewEntryStore creates an index row store backed by GORM.
func NewEntryStore(db *gorm.DB) EntryStore {
	return &gormEntryStore{db: db}
}

func (s *gormEntryStore) Put(ctx context.Context, userID string, entry Entry) error {
	rows := make([]models.IndexRow, 0, len(entry))
	for field, value := range entry {
		rows = append(rows, models.IndexRow{UserID: userID, Field: field, Value: value})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.IndexRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (s *gormEntryStore) Get(ctx context.Context, userID string) (Entry, error) {
	var rows []models.IndexRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	entry := make(Entry, len(rows))
	for _, r := range rows {
		entry[r.Field] = r.Value
	}
	return entry, nil
}

func (s *gormEntryStore) FindUserIDs(ctx context.Context, field, value string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.IndexRow{}).
		Where("field = ? AND value = ?", field, value).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// Reset drops every index row. Used by the rebuild command before a replay.
func Reset(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec("DELETE FROM index_rows").Error
}
