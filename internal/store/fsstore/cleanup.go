package fsstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"oneclip/internal/store"
	"oneclip/pkg/types"
)

// StorageInfo implements store.Store. The count is the raw on-disk entry
// count across every bucket file, which can exceed the retention cap while
// stale buckets await a cleanup pass.
func (s *FSStore) StorageInfo(ctx context.Context) (store.Info, error) {
	info := store.Info{CachePath: s.root}

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("failed to walk storage path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			slog.Warn("failed to stat storage file", "path", path, "error", err)
			return nil
		}
		info.TotalSize += fi.Size()

		if d.Name() == store.ItemsFileName {
			data, err := os.ReadFile(path)
			if err != nil {
				slog.Warn("failed to read bucket file", "path", path, "error", err)
				return nil
			}
			var group []types.Entry
			if err := json.Unmarshal(data, &group); err != nil {
				slog.Warn("failed to decode bucket file", "path", path, "error", err)
				return nil
			}
			info.ItemCount += len(group)
		}
		return nil
	})
	if err != nil {
		return info, fmt.Errorf("failed to walk storage root: %w", err)
	}
	return info, nil
}

// ManualCleanup implements store.Store: an unconditional full wipe, favorites
// included. When the wholesale delete fails, fall back to removing children
// one at a time, continuing past individual failures.
func (s *FSStore) ManualCleanup(ctx context.Context) error {
	if err := os.RemoveAll(s.root); err != nil {
		slog.Warn("failed to remove storage root, removing entries individually", "error", err)

		dirEntries, listErr := os.ReadDir(s.root)
		if listErr != nil {
			return fmt.Errorf("failed to list storage root: %w", listErr)
		}
		for _, de := range dirEntries {
			if rmErr := os.RemoveAll(filepath.Join(s.root, de.Name())); rmErr != nil {
				slog.Warn("failed to remove storage entry", "name", de.Name(), "error", rmErr)
			}
		}
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("failed to recreate storage root: %w", err)
	}
	return nil
}

// CleanupOlderThan implements store.Store. A bucket is removed when its whole
// calendar day lies strictly before the cutoff instant (now minus days*24h);
// the bucket containing the cutoff is retained. Days <= 0 means auto-cleanup
// is disabled and the pass is a no-op.
func (s *FSStore) CleanupOlderThan(ctx context.Context, days int) error {
	if days <= 0 {
		return nil
	}

	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)

	buckets, err := s.bucketNames()
	if err != nil {
		return err
	}

	for _, bucket := range buckets {
		day, err := time.ParseInLocation(store.BucketNameLayout, bucket, time.Local)
		if err != nil {
			continue
		}
		bucketEnd := day.Add(24 * time.Hour)
		if bucketEnd.After(cutoff) {
			continue
		}
		slog.Info("removing expired bucket", "bucket", bucket, "retentionDays", days)
		if err := os.RemoveAll(filepath.Join(s.root, bucket)); err != nil {
			slog.Warn("failed to remove expired bucket", "bucket", bucket, "error", err)
		}
	}
	return nil
}

// EnforceSizeLimit implements store.Store. When total usage exceeds the size
// cap, oldest buckets are evicted one at a time, recomputing usage after each
// deletion, until usage drops to the low-water mark.
func (s *FSStore) EnforceSizeLimit(ctx context.Context) error {
	info, err := s.StorageInfo(ctx)
	if err != nil {
		return err
	}
	if info.TotalSize <= s.sizeCap {
		return nil
	}

	lowWater := int64(float64(s.sizeCap) * store.SizeLowWater)

	buckets, err := s.bucketNames()
	if err != nil {
		return err
	}
	sort.Strings(buckets) // oldest first

	for _, bucket := range buckets {
		slog.Info("evicting bucket to reclaim space", "bucket", bucket, "totalSize", info.TotalSize)
		if err := os.RemoveAll(filepath.Join(s.root, bucket)); err != nil {
			slog.Warn("failed to evict bucket", "bucket", bucket, "error", err)
		}

		info, err = s.StorageInfo(ctx)
		if err != nil {
			return err
		}
		if info.TotalSize <= lowWater {
			break
		}
	}
	return nil
}
