// Package notify posts user-facing notifications. On macOS it shells out to
// osascript; elsewhere notifications are logged and dropped.
package notify

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// Notifier posts a notification to the user.
type Notifier interface {
	Notify(title, body string) error
}

// New returns the platform notifier.
func New() Notifier {
	if runtime.GOOS == "darwin" {
		return &osascriptNotifier{}
	}
	return &logNotifier{}
}

type osascriptNotifier struct{}

func (n *osascriptNotifier) Notify(title, body string) error {
	script := fmt.Sprintf("display notification %q with title %q", body, title)
	cmd := exec.Command("osascript", "-e", script)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to post notification: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

type logNotifier struct{}

func (n *logNotifier) Notify(title, body string) error {
	slog.Info("notification", "title", title, "body", body)
	return nil
}
