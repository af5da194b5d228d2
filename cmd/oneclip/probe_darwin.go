//go:build darwin

package main

import "os/exec"

// accessibilityProbe asks System Events for its process list. The call only
// succeeds once the user has granted Accessibility access in System Settings.
func accessibilityProbe() bool {
	cmd := exec.Command("osascript", "-e",
		`tell application "System Events" to count processes`)
	return cmd.Run() == nil
}
