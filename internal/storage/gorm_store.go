package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one row of the key-value table.
type Entry struct {
	Key       string `gorm:"column:storage_key;primaryKey;type:varchar(255)"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time
}

// TableName overrides the table name used by GORM.
func (Entry) TableName() string {
	return "kv_entries"
}

// GORMStore is a GORM implementation of Store.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a GORMStore and migrates its table.
func NewGORMStore(db *gorm.DB) (*GORMStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &GORMStore{
		db: db,
	}, nil
}

// Get decodes the value stored under key into dst.
func (s *GORMStore) Get(key string, dst any) error {
	var entry Entry
	if err := s.db.First(&entry, "storage_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrKeyNotFound
		}
		return fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(entry.Value), dst); err != nil {
		return fmt.Errorf("failed to decode value of %s: %w", key, err)
	}
	return nil
}

// Set upserts the value stored under key.
func (s *GORMStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value of %s: %w", key, err)
	}

	entry := Entry{Key: key, Value: string(raw), UpdatedAt: time.Now()}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *GORMStore) Remove(key string) error {
	if err := s.db.Delete(&Entry{}, "storage_key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys.
func (s *GORMStore) Keys() ([]string, error) {
	var keys []string
	if err := s.db.Model(&Entry{}).Order("storage_key").Pluck("storage_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}
