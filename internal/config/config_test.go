package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.MaxItems() != DefaultMaxItems {
		t.Errorf("expected default max items %d, got %d", DefaultMaxItems, cfg.MaxItems())
	}
	if cfg.RetentionDays() != DefaultRetentionDays {
		t.Errorf("expected retention disabled by default, got %d", cfg.RetentionDays())
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("expected default port %d, got %d", DefaultPort, cfg.Port())
	}
	if cfg.StorageRoot() == "" {
		t.Error("storage root should never be empty")
	}
}

func TestLoad_File(t *testing.T) {
	dir, err := os.MkdirTemp("", "oneclip-config-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "oneclip.toml")
	content := `
[storage]
root = "/tmp/oneclip-test"
max_items = 25
retention_days = 7

[server]
port = 9001
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.StorageRoot() != "/tmp/oneclip-test" {
		t.Errorf("unexpected storage root: %s", cfg.StorageRoot())
	}
	if cfg.MaxItems() != 25 {
		t.Errorf("expected max items 25, got %d", cfg.MaxItems())
	}
	if cfg.RetentionDays() != 7 {
		t.Errorf("expected retention 7, got %d", cfg.RetentionDays())
	}
	if cfg.Port() != 9001 {
		t.Errorf("expected port 9001, got %d", cfg.Port())
	}
}

func TestLoad_EnvVars(t *testing.T) {
	t.Setenv("ONECLIP_STORAGE_RETENTION_DAYS", "14")
	t.Setenv("ONECLIP_SERVER_PORT", "9100")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.RetentionDays() != 14 {
		t.Errorf("expected retention 14 from env, got %d", cfg.RetentionDays())
	}
	if cfg.Port() != 9100 {
		t.Errorf("expected port 9100 from env, got %d", cfg.Port())
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load("/nonexistent/oneclip.toml"); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}
