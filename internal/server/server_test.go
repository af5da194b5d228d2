package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"oneclip/internal/service"
	"oneclip/internal/store"
	"oneclip/internal/store/fsstore"
	"oneclip/pkg/types"
)

type nopMonitor struct {
	handler func(types.Entry)
}

func (m *nopMonitor) Start() error                       { return nil }
func (m *nopMonitor) Stop() error                        { return nil }
func (m *nopMonitor) OnChange(handler func(types.Entry)) { m.handler = handler }
func (m *nopMonitor) SetContent(entry types.Entry) error { return nil }

type noRetention struct{}

func (noRetention) RetentionDays() int { return 0 }

type serverFixture struct {
	ts      *httptest.Server
	svc     *service.Service
	fsStore *fsstore.FSStore
}

func setupTestServer(t *testing.T) (*serverFixture, func()) {
	tempDir, err := os.MkdirTemp("", "oneclip-server-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	fsStore, err := fsstore.New(store.Config{Root: filepath.Join(tempDir, "OneClip")})
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("failed to create store: %v", err)
	}

	svc := service.New(&nopMonitor{}, fsStore, noRetention{})
	srv := New(svc, Config{Port: 0})
	ts := httptest.NewServer(srv.routes())

	cleanup := func() {
		ts.Close()
		os.RemoveAll(tempDir)
	}
	return &serverFixture{ts: ts, svc: svc, fsStore: fsStore}, cleanup
}

// seedHistory writes entries straight into the backing store, oldest first.
func seedHistory(t *testing.T, f *serverFixture, entries ...types.Entry) {
	t.Helper()
	for _, e := range entries {
		if err := f.fsStore.SaveItem(context.Background(), e); err != nil {
			t.Fatalf("failed to seed entry %s: %v", e.ID, err)
		}
	}
}

func TestServer_Status(t *testing.T) {
	f, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := http.Get(f.ts.URL + "/status")
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected status: %s", body["status"])
	}
}

func TestServer_HistoryEmpty(t *testing.T) {
	f, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := http.Get(f.ts.URL + "/api/history")
	if err != nil {
		t.Fatalf("history request failed: %v", err)
	}
	defer resp.Body.Close()

	var items []types.Entry
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty history, got %d items", len(items))
	}
}

func TestServer_HistoryAndEntry(t *testing.T) {
	f, cleanup := setupTestServer(t)
	defer cleanup()

	seedHistory(t, f,
		types.Entry{ID: "a", Type: types.TypeText, Content: "first", Timestamp: time.Now().Add(-time.Minute)},
		types.Entry{ID: "b", Type: types.TypeText, Content: "second", Timestamp: time.Now()},
	)

	resp, err := http.Get(f.ts.URL + "/api/history")
	if err != nil {
		t.Fatalf("history request failed: %v", err)
	}
	defer resp.Body.Close()

	var items []types.Entry
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(items) != 2 || items[0].ID != "b" {
		t.Fatalf("unexpected history: %+v", items)
	}

	resp2, err := http.Get(f.ts.URL + "/api/history/1")
	if err != nil {
		t.Fatalf("entry request failed: %v", err)
	}
	defer resp2.Body.Close()

	var entry types.Entry
	if err := json.NewDecoder(resp2.Body).Decode(&entry); err != nil {
		t.Fatalf("failed to decode entry: %v", err)
	}
	if entry.ID != "a" {
		t.Errorf("expected entry a at index 1, got %s", entry.ID)
	}

	resp3, err := http.Get(f.ts.URL + "/api/history/9")
	if err != nil {
		t.Fatalf("entry request failed: %v", err)
	}
	resp3.Body.Close()
	if resp3.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for out-of-range index, got %d", resp3.StatusCode)
	}
}

func TestServer_DeleteAndClear(t *testing.T) {
	f, cleanup := setupTestServer(t)
	defer cleanup()

	fav := types.Entry{ID: "fav", Type: types.TypeText, Content: "keep", Timestamp: time.Now(), IsFavorite: true}
	seedHistory(t, f,
		types.Entry{ID: "x", Type: types.TypeText, Content: "drop", Timestamp: time.Now().Add(-time.Minute)},
		fav,
	)

	req, _ := http.NewRequest(http.MethodDelete, f.ts.URL+"/api/history/x", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp2, err := http.Post(f.ts.URL+"/api/history/clear", "application/json", nil)
	if err != nil {
		t.Fatalf("clear request failed: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp2.StatusCode)
	}

	items, err := f.svc.History(context.Background())
	if err != nil {
		t.Fatalf("failed to load history: %v", err)
	}
	if len(items) != 1 || items[0].ID != "fav" {
		t.Errorf("expected only the favorite to survive, got %+v", items)
	}
}

func TestServer_FavoriteToggle(t *testing.T) {
	f, cleanup := setupTestServer(t)
	defer cleanup()

	seedHistory(t, f,
		types.Entry{ID: "a", Type: types.TypeText, Content: "pin me", Timestamp: time.Now()},
	)

	resp, err := http.Post(f.ts.URL+"/api/history/a/favorite", "application/json", nil)
	if err != nil {
		t.Fatalf("favorite request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var entry types.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		t.Fatalf("failed to decode entry: %v", err)
	}
	if !entry.IsFavorite {
		t.Error("expected entry to be favorited")
	}

	resp2, err := http.Post(f.ts.URL+"/api/history/clear", "application/json", nil)
	if err != nil {
		t.Fatalf("clear request failed: %v", err)
	}
	resp2.Body.Close()

	items, err := f.svc.History(context.Background())
	if err != nil {
		t.Fatalf("failed to load history: %v", err)
	}
	if len(items) != 1 || !items[0].IsFavorite {
		t.Errorf("expected the favorited entry to survive clear, got %+v", items)
	}

	resp3, err := http.Post(f.ts.URL+"/api/history/missing/favorite", "application/json", nil)
	if err != nil {
		t.Fatalf("favorite request failed: %v", err)
	}
	resp3.Body.Close()
	if resp3.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", resp3.StatusCode)
	}
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	hub := newHub()
	ran := make(chan struct{})
	go func() {
		hub.run()
		close(ran)
	}()

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- client

	hub.stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("hub run loop did not exit after stop")
	}

	if _, ok := <-client.send; ok {
		t.Error("expected client send channel to be closed")
	}
}

func TestServer_StorageAndCleanup(t *testing.T) {
	f, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := http.Post(f.ts.URL+"/api/cleanup", "application/json", nil)
	if err != nil {
		t.Fatalf("cleanup request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp2, err := http.Get(f.ts.URL + "/api/storage")
	if err != nil {
		t.Fatalf("storage request failed: %v", err)
	}
	defer resp2.Body.Close()

	var info store.Info
	if err := json.NewDecoder(resp2.Body).Decode(&info); err != nil {
		t.Fatalf("failed to decode storage info: %v", err)
	}
	if info.ItemCount != 0 || info.TotalSize != 0 {
		t.Errorf("expected empty storage after cleanup, got %+v", info)
	}
}
