package store

import (
	"context"

	"oneclip/pkg/types"
)

// Store defines the interface for clipboard history persistence.
type Store interface {
	// SaveItem persists a clipboard entry, materializing sidecar files for
	// image and file payloads and enforcing the retained-entry cap.
	SaveItem(ctx context.Context, entry types.Entry) error

	// LoadItems returns all retained entries, newest first.
	LoadItems(ctx context.Context) ([]types.Entry, error)

	// DeleteItem removes the entry with the given ID.
	DeleteItem(ctx context.Context, id string) error

	// ClearAllItems deletes everything except favorited entries.
	ClearAllItems(ctx context.Context) error

	// StorageInfo reports the raw on-disk entry count, total size in bytes
	// and the storage root path.
	StorageInfo(ctx context.Context) (Info, error)

	// ManualCleanup wipes the storage root entirely, favorites included,
	// and recreates it empty.
	ManualCleanup(ctx context.Context) error

	// CleanupOlderThan removes every day bucket strictly older than the
	// given number of days. Days <= 0 disables the pass.
	CleanupOlderThan(ctx context.Context, days int) error

	// EnforceSizeLimit evicts oldest buckets until total usage drops to
	// the low-water mark of the size cap.
	EnforceSizeLimit(ctx context.Context) error
}

// Info describes current on-disk usage. ItemCount is the raw count across
// every bucket file and can exceed the retention cap while stale buckets
// await cleanup.
type Info struct {
	ItemCount int    `json:"itemCount"`
	TotalSize int64  `json:"totalSize"`
	CachePath string `json:"cachePath"`
}

// Config holds store configuration.
type Config struct {
	Root     string // Base directory for day buckets
	MaxItems int    // Retained-entry cap; 0 means DefaultMaxItems
	SizeCap  int64  // Total-size cap in bytes; 0 means DefaultSizeCap
}
