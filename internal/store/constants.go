package store

import "errors"

const (
	// DefaultMaxItems caps the retained history across all buckets.
	DefaultMaxItems = 100

	// DefaultSizeCap is the total on-disk size cap.
	DefaultSizeCap = 500 * 1024 * 1024 // 500MiB

	// SizeLowWater is the fraction of the cap that size-based eviction
	// drains usage down to.
	SizeLowWater = 0.8

	// BucketNameLayout is the day-bucket directory name format.
	BucketNameLayout = "2006-01-02"

	// ItemsFileName is the per-bucket entry file.
	ItemsFileName = "items.json"
)

// Store errors
var (
	ErrNotFound    = errors.New("entry not found")
	ErrInvalidType = errors.New("invalid content type")
)
