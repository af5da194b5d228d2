package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupTestAgent(t *testing.T) (*launchAgent, func()) {
	dir, err := os.MkdirTemp("", "oneclip-autostart-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	agent := &launchAgent{
		execPath: "/usr/local/bin/oneclip",
		dir:      filepath.Join(dir, "LaunchAgents"),
	}
	cleanup := func() {
		os.RemoveAll(dir)
	}
	return agent, cleanup
}

func TestEnableWritesPlist(t *testing.T) {
	agent, cleanup := setupTestAgent(t)
	defer cleanup()

	if agent.IsEnabled() {
		t.Error("Expected agent to start disabled")
	}

	if err := agent.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if !agent.IsEnabled() {
		t.Error("Expected agent to be enabled after Enable")
	}

	data, err := os.ReadFile(agent.plistPath())
	if err != nil {
		t.Fatalf("Failed to read plist: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, agentLabel) {
		t.Errorf("Plist missing label %q", agentLabel)
	}
	if !strings.Contains(content, "/usr/local/bin/oneclip") {
		t.Error("Plist missing executable path")
	}
	if !strings.Contains(content, "<key>RunAtLoad</key>") {
		t.Error("Plist missing RunAtLoad key")
	}
}

func TestDisableRemovesPlist(t *testing.T) {
	agent, cleanup := setupTestAgent(t)
	defer cleanup()

	if err := agent.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if err := agent.Disable(); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	if agent.IsEnabled() {
		t.Error("Expected agent to be disabled after Disable")
	}

	// Disabling twice should not error.
	if err := agent.Disable(); err != nil {
		t.Errorf("Second Disable failed: %v", err)
	}
}
