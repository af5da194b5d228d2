//go:build !darwin

package main

// accessibilityProbe is a no-op off macOS; clipboard access needs no grant.
func accessibilityProbe() bool { return true }
