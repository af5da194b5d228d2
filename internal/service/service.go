// Package service coordinates the clipboard watcher, the filesystem store,
// the search index and the periodic cleanup passes. All store access is
// serialized here; the store itself does no locking.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"oneclip/internal/index"
	"oneclip/internal/store"
	"oneclip/internal/watcher"
	"oneclip/pkg/types"
)

// cleanupInterval drives the age-based retention pass.
const cleanupInterval = time.Hour

// ServiceError carries the failed operation alongside the underlying error.
type ServiceError struct {
	Op      string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// RetentionConfig yields the live cleanup retention window. It is re-read on
// every cleanup tick so config edits apply without a restart.
type RetentionConfig interface {
	RetentionDays() int
}

// Notifier posts user-facing notifications. Implementations live in
// internal/notify.
type Notifier interface {
	Notify(title, body string) error
}

// Service owns the watcher-store-index pipeline.
type Service struct {
	monitor  watcher.Monitor
	store    store.Store
	index    *index.Index
	cfg      RetentionConfig
	notifier Notifier

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	storeMu sync.Mutex // serializes all store access

	handlerMu sync.RWMutex
	handlers  []ChangeHandler

	isCleaning sync.Mutex // at most one cleanup pass in flight
}

// Option configures optional collaborators.
type Option func(*Service)

// WithIndex attaches a search index kept in sync with the store.
func WithIndex(ix *index.Index) Option {
	return func(s *Service) { s.index = ix }
}

// WithNotifier attaches a user-notification sink.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// New creates a Service.
func New(monitor watcher.Monitor, st store.Store, cfg RetentionConfig, opts ...Option) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		monitor: monitor,
		store:   st,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterHandler adds a clipboard change handler.
func (s *Service) RegisterHandler(handler ChangeHandler) {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Start begins watching the clipboard and schedules the cleanup ticker.
func (s *Service) Start() error {
	s.monitor.OnChange(func(entry types.Entry) {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.handleClipboardChange(entry); err != nil {
				slog.Error("failed to handle clipboard change", "error", err)
				return
			}

			s.handlerMu.RLock()
			handlers := s.handlers
			s.handlerMu.RUnlock()

			for _, handler := range handlers {
				handler.HandleClipboardChange(entry)
			}
		}()
	})

	if err := s.monitor.Start(); err != nil {
		return &ServiceError{Op: "Start", Message: "failed to start clipboard watcher", Err: err}
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return nil
}

// Stop shuts the service down and waits for in-flight work.
func (s *Service) Stop() error {
	s.cancel()

	if err := s.monitor.Stop(); err != nil {
		return &ServiceError{Op: "Stop", Message: "failed to stop clipboard watcher", Err: err}
	}

	s.wg.Wait()
	return nil
}

// cleanupLoop runs the age-based retention pass hourly. The retention window
// is read from config on every tick; a non-positive value disables the pass.
func (s *Service) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RunCleanup()
		}
	}
}

// RunCleanup performs one age-retention pass. Overlapping passes are
// collapsed: if one is already running, the call returns immediately.
func (s *Service) RunCleanup() {
	if !s.isCleaning.TryLock() {
		slog.Debug("cleanup already in flight, skipping")
		return
	}
	defer s.isCleaning.Unlock()

	days := s.cfg.RetentionDays()
	if days <= 0 {
		return
	}

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	if err := s.store.CleanupOlderThan(s.ctx, days); err != nil {
		slog.Warn("age cleanup failed", "error", err)
	}
	if err := s.store.EnforceSizeLimit(s.ctx); err != nil {
		slog.Warn("size cleanup failed", "error", err)
	}
}

// handleClipboardChange persists a new clipboard entry and keeps the index
// and size cap up to date.
func (s *Service) handleClipboardChange(entry types.Entry) error {
	if entry.Content == "" && len(entry.Data) == 0 {
		return nil
	}

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	if err := s.store.SaveItem(s.ctx, entry); err != nil {
		return &ServiceError{Op: "handleClipboardChange", Message: "failed to store entry", Err: err}
	}

	if s.index != nil {
		if err := s.index.Upsert(s.ctx, entry); err != nil {
			slog.Warn("failed to index entry", "id", entry.ID, "error", err)
		}
	}

	if err := s.store.EnforceSizeLimit(s.ctx); err != nil {
		slog.Warn("size cleanup failed", "error", err)
	}

	slog.Info("stored clipboard entry", "type", entry.Type, "id", entry.ID)
	return nil
}

// History returns the retained entries, newest first.
func (s *Service) History(ctx context.Context) ([]types.Entry, error) {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	items, err := s.store.LoadItems(ctx)
	if err != nil {
		return nil, &ServiceError{Op: "History", Message: "failed to load items", Err: err}
	}
	return items, nil
}

// EntryByIndex returns the nth most recent entry (0 being the most recent).
func (s *Service) EntryByIndex(ctx context.Context, idx int) (types.Entry, error) {
	items, err := s.History(ctx)
	if err != nil {
		return types.Entry{}, err
	}
	if idx < 0 || idx >= len(items) {
		return types.Entry{}, &ServiceError{Op: "EntryByIndex", Message: fmt.Sprintf("no entry at index %d", idx)}
	}
	return items[idx], nil
}

// PasteByIndex writes the nth most recent entry back to the clipboard.
func (s *Service) PasteByIndex(ctx context.Context, idx int) error {
	entry, err := s.EntryByIndex(ctx, idx)
	if err != nil {
		return err
	}
	if err := s.monitor.SetContent(entry); err != nil {
		return &ServiceError{Op: "PasteByIndex", Message: "failed to set clipboard content", Err: err}
	}
	return nil
}

// DeleteEntry removes an entry by ID.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	if err := s.store.DeleteItem(ctx, id); err != nil {
		return &ServiceError{Op: "DeleteEntry", Message: "failed to delete entry", Err: err}
	}
	if s.index != nil {
		if err := s.index.Remove(ctx, id); err != nil {
			slog.Warn("failed to remove entry from index", "id", id, "error", err)
		}
	}
	return nil
}

// ToggleFavorite flips an entry's favorite flag and returns the updated
// entry. Favorited entries survive ClearHistory.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (types.Entry, error) {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	items, err := s.store.LoadItems(ctx)
	if err != nil {
		return types.Entry{}, &ServiceError{Op: "ToggleFavorite", Message: "failed to load items", Err: err}
	}

	for _, item := range items {
		if item.ID != id {
			continue
		}
		item.IsFavorite = !item.IsFavorite
		if err := s.store.SaveItem(ctx, item); err != nil {
			return types.Entry{}, &ServiceError{Op: "ToggleFavorite", Message: "failed to save entry", Err: err}
		}
		if s.index != nil {
			if err := s.index.Upsert(ctx, item); err != nil {
				slog.Warn("failed to index entry", "id", item.ID, "error", err)
			}
		}
		return item, nil
	}
	return types.Entry{}, &ServiceError{Op: "ToggleFavorite", Message: "no entry with id " + id, Err: store.ErrNotFound}
}

// ClearHistory removes everything except favorites and resyncs the index.
func (s *Service) ClearHistory(ctx context.Context) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	if err := s.store.ClearAllItems(ctx); err != nil {
		return &ServiceError{Op: "ClearHistory", Message: "failed to clear items", Err: err}
	}

	if s.index != nil {
		items, err := s.store.LoadItems(ctx)
		if err != nil {
			slog.Warn("failed to reload items for index rebuild", "error", err)
		} else if err := s.index.Rebuild(ctx, items); err != nil {
			slog.Warn("failed to rebuild index", "error", err)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.Notify("OneClip", "Clipboard history cleared"); err != nil {
			slog.Debug("failed to post notification", "error", err)
		}
	}
	return nil
}

// WipeStorage performs an unconditional manual cleanup, favorites included.
func (s *Service) WipeStorage(ctx context.Context) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	if err := s.store.ManualCleanup(ctx); err != nil {
		return &ServiceError{Op: "WipeStorage", Message: "failed to wipe storage", Err: err}
	}
	if s.index != nil {
		if err := s.index.Rebuild(ctx, nil); err != nil {
			slog.Warn("failed to reset index", "error", err)
		}
	}
	return nil
}

// StorageInfo reports current on-disk usage.
func (s *Service) StorageInfo(ctx context.Context) (store.Info, error) {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	info, err := s.store.StorageInfo(ctx)
	if err != nil {
		return info, &ServiceError{Op: "StorageInfo", Message: "failed to read storage info", Err: err}
	}
	return info, nil
}

// Search queries the index. Without an index it falls back to a linear scan
// over the retained entries.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]types.Entry, error) {
	if s.index != nil {
		return s.index.Search(ctx, query, limit)
	}

	items, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	var results []types.Entry
	for _, item := range items {
		if query == "" || containsFold(item.Content, query) {
			results = append(results, item)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
