// Package index maintains a SQLite full-history search index over clipboard
// entries. The index is derived data: it is updated alongside the filesystem
// store and can always be rebuilt from it, so losing the database never loses
// history.
package index

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"oneclip/pkg/types"
)

// Record is the indexed projection of a clipboard entry. Payloads and
// sidecar paths stay in the filesystem store.
type Record struct {
	ID         string    `gorm:"primaryKey"`
	Type       string    `gorm:"index"`
	Content    string
	Timestamp  time.Time `gorm:"index"`
	IsFavorite bool
}

func (r *Record) ToEntry() types.Entry {
	return types.Entry{
		ID:         r.ID,
		Type:       r.Type,
		Content:    r.Content,
		Timestamp:  r.Timestamp,
		IsFavorite: r.IsFavorite,
	}
}

func fromEntry(entry types.Entry) Record {
	return Record{
		ID:         entry.ID,
		Type:       entry.Type,
		Content:    entry.Content,
		Timestamp:  entry.Timestamp,
		IsFavorite: entry.IsFavorite,
	}
}

type Index struct {
	db *gorm.DB
}

// New opens (or creates) the index database at dbPath.
func New(dbPath string) (*Index, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate index schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Upsert inserts or replaces the record for an entry.
func (ix *Index) Upsert(ctx context.Context, entry types.Entry) error {
	record := fromEntry(entry)

	var existing Record
	err := ix.db.WithContext(ctx).Where("id = ?", record.ID).First(&existing).Error
	switch {
	case err == nil:
		if err := ix.db.WithContext(ctx).Save(&record).Error; err != nil {
			return fmt.Errorf("failed to update index record: %w", err)
		}
	case err == gorm.ErrRecordNotFound:
		if err := ix.db.WithContext(ctx).Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create index record: %w", err)
		}
	default:
		return fmt.Errorf("failed to check index record: %w", err)
	}
	return nil
}

// Remove deletes the record with the given ID. Removing an unknown ID is not
// an error.
func (ix *Index) Remove(ctx context.Context, id string) error {
	if err := ix.db.WithContext(ctx).Delete(&Record{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to remove index record: %w", err)
	}
	return nil
}

// Rebuild resets the index to exactly the given entries.
func (ix *Index) Rebuild(ctx context.Context, entries []types.Entry) error {
	return ix.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Record{}).Error; err != nil {
			return fmt.Errorf("failed to reset index: %w", err)
		}
		for _, entry := range entries {
			record := fromEntry(entry)
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to index entry %s: %w", entry.ID, err)
			}
		}
		return nil
	})
}

// Search returns entries whose content matches the query substring, newest
// first. An empty query returns the newest entries up to limit.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]types.Entry, error) {
	q := ix.db.WithContext(ctx).Model(&Record{}).Order("timestamp DESC")
	if query != "" {
		q = q.Where("content LIKE ?", "%"+query+"%")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var records []Record
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	entries := make([]types.Entry, len(records))
	for i := range records {
		entries[i] = records[i].ToEntry()
	}
	return entries, nil
}
