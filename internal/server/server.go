// Package server exposes the local HTTP and WebSocket API for OneClip
// frontends (menu bar app, TUI, scripts).
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"oneclip/internal/service"
	"oneclip/pkg/types"
)

type Server struct {
	clipService *service.Service
	hub         *Hub
	srv         *http.Server
	pid         *pidFile
	config      Config
}

type Config struct {
	Port int
}

func New(clipService *service.Service, config Config) *Server {
	s := &Server{
		clipService: clipService,
		hub:         newHub(),
		config:      config,
	}
	// The hub relays persisted clipboard changes to WebSocket clients.
	clipService.RegisterHandler(s.hub)
	return s
}

func (s *Server) Start() error {
	pid, err := newPIDFile()
	if err != nil {
		return err
	}
	if existing, err := pid.read(); err == nil && existing != 0 && existing != os.Getpid() && isRunning(existing) {
		return fmt.Errorf("another oneclip daemon is already running (pid %d)", existing)
	}
	if err := pid.write(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	s.pid = pid

	go s.hub.run()

	addr := fmt.Sprintf("127.0.0.1:%d", s.config.Port)
	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("http server error on %s: %w", addr, err)
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-time.After(100 * time.Millisecond):
		slog.Info("api server started", "addr", addr)
		return nil
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/status", s.handleStatus)
	r.Get("/ws", s.serveWs)
	r.Route("/api", func(r chi.Router) {
		// The {item} segment is a history index for GET and paste, an entry
		// ID for DELETE and favorite. chi requires one wildcard name per
		// position.
		r.Get("/history", s.handleHistory)
		r.Get("/history/{item}", s.handleEntry)
		r.Post("/history/{item}/paste", s.handlePaste)
		r.Post("/history/{item}/favorite", s.handleFavorite)
		r.Delete("/history/{item}", s.handleDelete)
		r.Post("/history/clear", s.handleClear)
		r.Get("/search", s.handleSearch)
		r.Get("/storage", s.handleStorage)
		r.Post("/cleanup", s.handleCleanup)
	})
	return r
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.hub.stop()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	if s.pid != nil {
		if err := s.pid.remove(); err != nil {
			slog.Warn("failed to remove PID file", "error", err)
		}
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	addr := ""
	if s.srv != nil {
		addr = s.srv.Addr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
		"addr":   addr,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.clipService.History(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	limit := len(items)
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed < limit {
			limit = parsed
		}
	}
	if items == nil {
		items = []types.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items[:limit])
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "item"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}

	entry, err := s.clipService.EntryByIndex(r.Context(), index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "item"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}

	if err := s.clipService.PasteByIndex(r.Context(), index); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "item")
	entry, err := s.clipService.ToggleFavorite(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "item")
	if err := s.clipService.DeleteEntry(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.clipService.ClearHistory(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := s.clipService.Search(r.Context(), query, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []types.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func (s *Server) handleStorage(w http.ResponseWriter, r *http.Request) {
	info, err := s.clipService.StorageInfo(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if err := s.clipService.WipeStorage(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
