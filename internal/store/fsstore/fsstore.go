// Package fsstore implements date-partitioned clipboard history storage.
// Each local calendar day gets one directory under the root holding an
// items.json entry array plus a sidecar file per image/file entry.
package fsstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"oneclip/internal/store"
	"oneclip/pkg/types"
)

type FSStore struct {
	root     string
	maxItems int
	sizeCap  int64
}

// New creates a filesystem store rooted at config.Root, creating the
// directory if needed.
func New(config store.Config) (*FSStore, error) {
	if config.Root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(config.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	maxItems := config.MaxItems
	if maxItems <= 0 {
		maxItems = store.DefaultMaxItems
	}
	sizeCap := config.SizeCap
	if sizeCap <= 0 {
		sizeCap = store.DefaultSizeCap
	}

	return &FSStore{
		root:     config.Root,
		maxItems: maxItems,
		sizeCap:  sizeCap,
	}, nil
}

// Root returns the storage root directory.
func (s *FSStore) Root() string {
	return s.root
}

// SaveItem implements store.Store. The working set is reloaded, deduplicated
// by ID, capped to maxItems after prepending the new entry, and every bucket
// that still holds surviving entries is rewritten. Buckets whose entries all
// fell off the cap keep their stale on-disk file until a cleanup pass runs.
func (s *FSStore) SaveItem(ctx context.Context, entry types.Entry) error {
	switch entry.Type {
	case types.TypeText, types.TypeImage, types.TypeFile:
	default:
		return store.ErrInvalidType
	}

	items, err := s.LoadItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to load working set: %w", err)
	}

	// Replace any prior entry with the same ID.
	kept := items[:0]
	for _, item := range items {
		if item.ID != entry.ID {
			kept = append(kept, item)
		}
	}
	items = kept

	processed, err := s.materializeSidecar(entry)
	if err != nil {
		return err
	}

	items = append([]types.Entry{processed}, items...)
	if len(items) > s.maxItems {
		items = items[:s.maxItems]
	}

	return s.persist(items)
}

// materializeSidecar writes a pending image or file payload next to the
// entry's bucket, clearing Data and recording FilePath. Text entries and
// entries without a live payload pass through unchanged.
func (s *FSStore) materializeSidecar(entry types.Entry) (types.Entry, error) {
	if len(entry.Data) == 0 {
		return entry, nil
	}

	var name string
	switch entry.Type {
	case types.TypeImage:
		name = entry.ID + ".png"
	case types.TypeFile:
		name = filepath.Base(entry.Content)
	default:
		return entry, nil
	}

	bucketDir := filepath.Join(s.root, entry.DateBucket())
	if err := os.MkdirAll(bucketDir, 0755); err != nil {
		return entry, fmt.Errorf("failed to create bucket directory: %w", err)
	}

	path := filepath.Join(bucketDir, name)
	if err := os.WriteFile(path, entry.Data, 0644); err != nil {
		return entry, fmt.Errorf("failed to write sidecar file: %w", err)
	}

	entry.FilePath = path
	entry.Data = nil
	return entry, nil
}

// persist groups the working set by day bucket and rewrites each affected
// bucket's items.json. Failures are logged per bucket and do not abort the
// remaining writes.
func (s *FSStore) persist(items []types.Entry) error {
	groups := make(map[string][]types.Entry)
	for _, item := range items {
		bucket := item.DateBucket()
		groups[bucket] = append(groups[bucket], item)
	}

	var lastErr error
	for bucket, group := range groups {
		bucketDir := filepath.Join(s.root, bucket)
		if err := os.MkdirAll(bucketDir, 0755); err != nil {
			slog.Warn("failed to create bucket directory", "bucket", bucket, "error", err)
			lastErr = err
			continue
		}

		data, err := json.MarshalIndent(group, "", "  ")
		if err != nil {
			slog.Warn("failed to encode bucket entries", "bucket", bucket, "error", err)
			lastErr = err
			continue
		}

		path := filepath.Join(bucketDir, store.ItemsFileName)
		if err := os.WriteFile(path, data, 0644); err != nil {
			slog.Warn("failed to write bucket file", "bucket", bucket, "error", err)
			lastErr = err
		}
	}
	return lastErr
}

// LoadItems implements store.Store. Buckets that fail to read or decode are
// skipped so a single corrupt day never hides the rest of the history.
func (s *FSStore) LoadItems(ctx context.Context) ([]types.Entry, error) {
	buckets, err := s.bucketNames()
	if err != nil {
		return nil, err
	}

	// Newest directory first. The bucket name is the date, so lexicographic
	// order is chronological order.
	sort.Sort(sort.Reverse(sort.StringSlice(buckets)))

	var items []types.Entry
	for _, bucket := range buckets {
		path := filepath.Join(s.root, bucket, store.ItemsFileName)
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("failed to read bucket file", "bucket", bucket, "error", err)
			}
			continue
		}

		var group []types.Entry
		if err := json.Unmarshal(data, &group); err != nil {
			slog.Warn("failed to decode bucket file", "bucket", bucket, "error", err)
			continue
		}
		items = append(items, group...)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})

	if len(items) > s.maxItems {
		items = items[:s.maxItems]
	}
	return items, nil
}

// DeleteItem implements store.Store. The store is small enough (maxItems
// bounded) that delete is a full rewrite: wipe every bucket and re-save the
// survivors through the normal save path.
func (s *FSStore) DeleteItem(ctx context.Context, id string) error {
	items, err := s.LoadItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to load items: %w", err)
	}

	found := false
	remaining := items[:0]
	for _, item := range items {
		if item.ID == id {
			found = true
			continue
		}
		remaining = append(remaining, item)
	}
	if !found {
		return store.ErrNotFound
	}

	remaining = s.reclaimSidecars(remaining)
	if err := s.removeBuckets(); err != nil {
		return err
	}

	// Oldest first so the newest-first invariant of SaveItem's prepend holds.
	for i := len(remaining) - 1; i >= 0; i-- {
		if err := s.SaveItem(ctx, remaining[i]); err != nil {
			slog.Warn("failed to re-save entry after delete", "id", remaining[i].ID, "error", err)
		}
	}
	return nil
}

// ClearAllItems implements store.Store. Favorited entries survive: their
// sidecar payloads are read back into memory before the wipe so the re-save
// can materialize fresh sidecar files.
func (s *FSStore) ClearAllItems(ctx context.Context) error {
	items, err := s.LoadItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to load items: %w", err)
	}

	var favorites []types.Entry
	for _, item := range items {
		if item.IsFavorite {
			favorites = append(favorites, item)
		}
	}
	favorites = s.reclaimSidecars(favorites)

	if err := s.removeBuckets(); err != nil {
		return err
	}

	for i := len(favorites) - 1; i >= 0; i-- {
		if err := s.SaveItem(ctx, favorites[i]); err != nil {
			slog.Warn("failed to re-save favorite", "id", favorites[i].ID, "error", err)
		}
	}
	return nil
}

// reclaimSidecars loads persisted sidecar payloads back into entry memory so
// the entries survive a bucket wipe. Entries whose sidecar cannot be read
// keep going without a payload.
func (s *FSStore) reclaimSidecars(items []types.Entry) []types.Entry {
	for i, item := range items {
		if item.FilePath == "" {
			continue
		}
		data, err := os.ReadFile(item.FilePath)
		if err != nil {
			slog.Warn("failed to reclaim sidecar payload", "id", item.ID, "error", err)
			continue
		}
		items[i].Data = data
		items[i].FilePath = ""
	}
	return items
}

// removeBuckets deletes every day-bucket directory under the root. Anything
// that is not a date-named directory is left alone.
func (s *FSStore) removeBuckets() error {
	buckets, err := s.bucketNames()
	if err != nil {
		return err
	}
	for _, bucket := range buckets {
		if err := os.RemoveAll(filepath.Join(s.root, bucket)); err != nil {
			slog.Warn("failed to remove bucket", "bucket", bucket, "error", err)
		}
	}
	return nil
}

// bucketNames lists the date-named bucket directories under the root.
func (s *FSStore) bucketNames() ([]string, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage root: %w", err)
	}

	var buckets []string
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		if _, err := time.ParseInLocation(store.BucketNameLayout, de.Name(), time.Local); err != nil {
			continue
		}
		buckets = append(buckets, de.Name())
	}
	return buckets, nil
}
