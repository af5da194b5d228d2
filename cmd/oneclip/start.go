package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"oneclip/internal/activity"
	"oneclip/internal/index"
	"oneclip/internal/notify"
	"oneclip/internal/permission"
	"oneclip/internal/server"
	"oneclip/internal/service"
	"oneclip/internal/store"
	"oneclip/internal/store/fsstore"
	"oneclip/internal/watcher"
	"oneclip/pkg/types"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the clipboard daemon",
		Long: `Watches the system clipboard, persists history under the storage root,
and serves the local HTTP/WebSocket API. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: runStart,
	}
	addConfigFlag(cmd)
	cmd.Flags().Bool("no-index", false, "disable the sqlite search index")
	return cmd
}

func runStart(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	resolveLogging(cfg.LogFormat(), cfg.LogLevel())

	fsStore, err := fsstore.New(store.Config{
		Root:     cfg.StorageRoot(),
		MaxItems: cfg.MaxItems(),
		SizeCap:  cfg.SizeCap(),
	})
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	opts := []service.Option{service.WithNotifier(notify.New())}

	noIndex, _ := cmd.Flags().GetBool("no-index")
	if !noIndex {
		ix, err := index.New(indexPath())
		if err != nil {
			slog.Warn("Search index unavailable, falling back to linear search", "error", err)
		} else {
			opts = append(opts, service.WithIndex(ix))
		}
	}

	clipService := service.New(watcher.NewMonitor(), fsStore, cfg, opts...)

	tracker := activity.NewTracker()
	clipService.RegisterHandler(touchOnChange{tracker})

	if err := clipService.Start(); err != nil {
		return fmt.Errorf("service: %w", err)
	}

	checker := permission.NewChecker(accessibilityProbe, 10*time.Second)
	go watchPermission(checker)
	checker.Start()

	srv := server.New(clipService, server.Config{Port: cfg.Port()})
	if err := srv.Start(); err != nil {
		clipService.Stop()
		return fmt.Errorf("server: %w", err)
	}

	slog.Info("oneclip started",
		"storage", cfg.StorageRoot(),
		"port", cfg.Port(),
		"max_items", cfg.MaxItems())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down")
	checker.Stop()
	if err := srv.Stop(); err != nil {
		slog.Error("Error stopping server", "error", err)
	}
	if err := clipService.Stop(); err != nil {
		slog.Error("Error stopping service", "error", err)
	}
	return nil
}

// touchOnChange feeds clipboard activity into the idle tracker.
type touchOnChange struct {
	tracker *activity.Tracker
}

func (h touchOnChange) HandleClipboardChange(types.Entry) {
	h.tracker.Touch()
}

// watchPermission logs accessibility flips so users notice a revoked grant.
func watchPermission(checker *permission.Checker) {
	for granted := range checker.Subscribe() {
		if !granted {
			slog.Warn("Accessibility permission revoked, paste simulation disabled")
		}
	}
}

func indexPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "oneclip-index.db"
	}
	dir := filepath.Join(home, ".oneclip")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "oneclip-index.db"
	}
	return filepath.Join(dir, "index.db")
}
