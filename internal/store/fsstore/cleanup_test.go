package fsstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"oneclip/internal/store"
	"oneclip/pkg/types"
)

func bucketExists(t *testing.T, fsStore *FSStore, bucket string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(fsStore.Root(), bucket))
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatalf("failed to stat bucket %s: %v", bucket, err)
	return false
}

func writeBucket(t *testing.T, fsStore *FSStore, daysAgo int, padding int) string {
	t.Helper()
	ts := time.Now().AddDate(0, 0, -daysAgo)
	bucket := ts.Format(store.BucketNameLayout)
	dir := filepath.Join(fsStore.Root(), bucket)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create bucket %s: %v", bucket, err)
	}

	entry := types.Entry{ID: "entry-" + bucket, Type: types.TypeText, Content: "x", Timestamp: ts}
	if err := fsStore.SaveItem(context.Background(), entry); err != nil {
		t.Fatalf("failed to seed bucket %s: %v", bucket, err)
	}

	if padding > 0 {
		pad := make([]byte, padding)
		if err := os.WriteFile(filepath.Join(dir, "pad.bin"), pad, 0644); err != nil {
			t.Fatalf("failed to pad bucket %s: %v", bucket, err)
		}
	}
	return bucket
}

func TestStorageInfo(t *testing.T) {
	fsStore, cleanup := setupTestStore(t, 100)
	defer cleanup()

	ctx := context.Background()
	if err := fsStore.SaveItem(ctx, textEntry("a", "hello", time.Now())); err != nil {
		t.Fatalf("failed to save entry: %v", err)
	}
	if err := fsStore.SaveItem(ctx, types.Entry{
		ID: "b", Type: types.TypeImage, Content: "Image",
		Data: []byte("0123456789"), Timestamp: time.Now(),
	}); err != nil {
		t.Fatalf("failed to save image: %v", err)
	}

	info, err := fsStore.StorageInfo(ctx)
	if err != nil {
		t.Fatalf("failed to get storage info: %v", err)
	}
	if info.ItemCount != 2 {
		t.Errorf("expected 2 items, got %d", info.ItemCount)
	}
	if info.TotalSize <= 10 {
		t.Errorf("total size should include items.json and sidecar, got %d", info.TotalSize)
	}
	if info.CachePath != fsStore.Root() {
		t.Errorf("cache path mismatch: got %s", info.CachePath)
	}
}

func TestManualCleanup(t *testing.T) {
	fsStore, cleanup := setupTestStore(t, 100)
	defer cleanup()

	ctx := context.Background()
	fav := textEntry("fav", "favorite", time.Now())
	fav.IsFavorite = true
	if err := fsStore.SaveItem(ctx, fav); err != nil {
		t.Fatalf("failed to save entry: %v", err)
	}

	if err := fsStore.ManualCleanup(ctx); err != nil {
		t.Fatalf("manual cleanup failed: %v", err)
	}

	// Favorites do not survive a manual cleanup, unlike ClearAllItems.
	info, err := fsStore.StorageInfo(ctx)
	if err != nil {
		t.Fatalf("failed to get storage info: %v", err)
	}
	if info.ItemCount != 0 || info.TotalSize != 0 {
		t.Errorf("expected empty storage, got count=%d size=%d", info.ItemCount, info.TotalSize)
	}

	fi, err := os.Stat(fsStore.Root())
	if err != nil || !fi.IsDir() {
		t.Errorf("storage root should exist after cleanup: %v", err)
	}
}

func TestCleanupOlderThan(t *testing.T) {
	fsStore, cleanup := setupTestStore(t, 100)
	defer cleanup()

	ctx := context.Background()
	expired := writeBucket(t, fsStore, 10, 0)
	edge := writeBucket(t, fsStore, 3, 0)
	recent := writeBucket(t, fsStore, 1, 0)

	if err := fsStore.CleanupOlderThan(ctx, 3); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if bucketExists(t, fsStore, expired) {
		t.Errorf("bucket %s should have been removed", expired)
	}
	// The bucket exactly at the retention edge is kept: its day is not
	// strictly before the cutoff instant.
	if !bucketExists(t, fsStore, edge) {
		t.Errorf("bucket %s at the retention edge should be kept", edge)
	}
	if !bucketExists(t, fsStore, recent) {
		t.Errorf("recent bucket %s should be kept", recent)
	}
}

func TestCleanupOlderThan_DisabledRetention(t *testing.T) {
	fsStore, cleanup := setupTestStore(t, 100)
	defer cleanup()

	ctx := context.Background()
	old := writeBucket(t, fsStore, 30, 0)

	for _, days := range []int{0, -1} {
		if err := fsStore.CleanupOlderThan(ctx, days); err != nil {
			t.Fatalf("cleanup with days=%d failed: %v", days, err)
		}
		if !bucketExists(t, fsStore, old) {
			t.Fatalf("cleanup with days=%d should be a no-op", days)
		}
	}
}

func TestEnforceSizeLimit(t *testing.T) {
	fsStore, cleanup := setupTestStore(t, 100)
	defer cleanup()
	fsStore.sizeCap = 4096

	ctx := context.Background()
	oldest := writeBucket(t, fsStore, 3, 2048)
	middle := writeBucket(t, fsStore, 2, 2048)
	newest := writeBucket(t, fsStore, 1, 512)

	if err := fsStore.EnforceSizeLimit(ctx); err != nil {
		t.Fatalf("size cleanup failed: %v", err)
	}

	// Eviction goes oldest first and stops at the low-water mark: dropping
	// the oldest bucket brings usage under 80% of the cap, so the rest stay.
	if bucketExists(t, fsStore, oldest) {
		t.Errorf("oldest bucket %s should have been evicted", oldest)
	}
	if !bucketExists(t, fsStore, middle) {
		t.Errorf("bucket %s should survive once usage is under the low-water mark", middle)
	}
	if !bucketExists(t, fsStore, newest) {
		t.Errorf("newest bucket %s should survive", newest)
	}

	info, err := fsStore.StorageInfo(ctx)
	if err != nil {
		t.Fatalf("failed to get storage info: %v", err)
	}
	if info.TotalSize > int64(float64(fsStore.sizeCap)*store.SizeLowWater) {
		t.Errorf("usage %d still above low-water mark", info.TotalSize)
	}
}

func TestEnforceSizeLimit_UnderCapIsNoop(t *testing.T) {
	fsStore, cleanup := setupTestStore(t, 100)
	defer cleanup()

	ctx := context.Background()
	bucket := writeBucket(t, fsStore, 1, 100)

	if err := fsStore.EnforceSizeLimit(ctx); err != nil {
		t.Fatalf("size cleanup failed: %v", err)
	}
	if !bucketExists(t, fsStore, bucket) {
		t.Error("no bucket should be evicted while under the cap")
	}
}
