//go:build !windows

package platform

import "os/exec"

// HideConsole is a no-op outside Windows.
func HideConsole(*exec.Cmd) {}
