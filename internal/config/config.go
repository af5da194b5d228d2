// Package config loads OneClip configuration with viper: defaults, an
// optional config file, ONECLIP_* environment variables, in that order of
// precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Defaults
const (
	DefaultMaxItems      = 100
	DefaultRetentionDays = 0 // 0 = age-based auto-cleanup disabled
	DefaultPort          = 8950
	DefaultLicenseServer = "https://api.oneclip.app"
)

// Config wraps a viper instance. Values that may change at runtime
// (retention days) are re-read on every call; the config file is watched so
// edits take effect without a restart.
type Config struct {
	v *viper.Viper
}

// Load reads configuration. An explicit path overrides the search order
// (/etc/oneclip, ~/.config/oneclip). A missing config file is not an error;
// defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("storage.root", defaultStorageRoot())
	v.SetDefault("storage.max_items", DefaultMaxItems)
	v.SetDefault("storage.retention_days", DefaultRetentionDays)
	v.SetDefault("storage.size_cap", int64(0)) // 0 = store default
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("license.server", DefaultLicenseServer)
	v.SetDefault("license.api_key", "")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.level", "info")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("oneclip")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/oneclip/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "oneclip"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if path != "" || !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	} else {
		v.OnConfigChange(func(e fsnotify.Event) {
			slog.Info("config file changed", "file", e.Name)
		})
		v.WatchConfig()
	}

	v.SetEnvPrefix("ONECLIP")
	// Nested keys use dots internally; env vars spell them with underscores
	// (storage.retention_days -> ONECLIP_STORAGE_RETENTION_DAYS).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}, nil
}

func defaultStorageRoot() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "OneClip")
	}
	return filepath.Join(dir, "OneClip")
}

// StorageRoot returns the day-bucket storage root.
func (c *Config) StorageRoot() string { return c.v.GetString("storage.root") }

// MaxItems returns the retained-entry cap.
func (c *Config) MaxItems() int { return c.v.GetInt("storage.max_items") }

// RetentionDays is read live on every call so the hourly cleanup tick picks
// up config edits. A value <= 0 disables age-based cleanup.
func (c *Config) RetentionDays() int { return c.v.GetInt("storage.retention_days") }

// SizeCap returns the total-size cap in bytes, 0 meaning the store default.
func (c *Config) SizeCap() int64 { return c.v.GetInt64("storage.size_cap") }

// Port returns the local API server port.
func (c *Config) Port() int { return c.v.GetInt("server.port") }

// LicenseServer returns the license backend base URL.
func (c *Config) LicenseServer() string { return c.v.GetString("license.server") }

// LicenseAPIKey returns the license backend API key.
func (c *Config) LicenseAPIKey() string { return c.v.GetString("license.api_key") }

// LogFormat returns the configured log format string.
func (c *Config) LogFormat() string { return c.v.GetString("log.format") }

// LogLevel returns the configured log level string.
func (c *Config) LogLevel() string { return c.v.GetString("log.level") }
