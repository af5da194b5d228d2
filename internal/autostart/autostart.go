// Package autostart manages launch-at-login registration. On macOS this is a
// LaunchAgent plist under ~/Library/LaunchAgents; other platforms report
// unsupported.
package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const agentLabel = "app.oneclip.daemon"

// Autostart controls whether the daemon starts on login.
type Autostart interface {
	IsEnabled() bool
	Enable() error
	Disable() error
}

// New returns the platform autostart controller. execPath is the binary to
// launch on login.
func New(execPath string) (Autostart, error) {
	if runtime.GOOS != "darwin" {
		return unsupported{}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &launchAgent{
		execPath: execPath,
		dir:      filepath.Join(home, "Library", "LaunchAgents"),
	}, nil
}

type launchAgent struct {
	execPath string
	dir      string
}

func (l *launchAgent) plistPath() string {
	return filepath.Join(l.dir, agentLabel+".plist")
}

func (l *launchAgent) IsEnabled() bool {
	_, err := os.Stat(l.plistPath())
	return err == nil
}

func (l *launchAgent) Enable() error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("failed to create LaunchAgents directory: %w", err)
	}

	plist := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
		<string>start</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<false/>
</dict>
</plist>
`, agentLabel, l.execPath)

	if err := os.WriteFile(l.plistPath(), []byte(plist), 0644); err != nil {
		return fmt.Errorf("failed to write LaunchAgent plist: %w", err)
	}
	return nil
}

func (l *launchAgent) Disable() error {
	if err := os.Remove(l.plistPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove LaunchAgent plist: %w", err)
	}
	return nil
}

type unsupported struct{}

func (unsupported) IsEnabled() bool { return false }
func (unsupported) Enable() error   { return fmt.Errorf("launch at login is not supported on %s", runtime.GOOS) }
func (unsupported) Disable() error  { return nil }
