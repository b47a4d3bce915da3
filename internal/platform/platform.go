// Package platform isolates the per-OS branches the rest of the codebase
// would otherwise scatter: well-known binary locations, Homebrew probing,
// and console-window suppression for spawned processes.
package platform

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// IsDarwin reports whether the process runs on macOS.
func IsDarwin() bool { return runtime.GOOS == "darwin" }

// IsWindows reports whether the process runs on Windows.
func IsWindows() bool { return runtime.GOOS == "windows" }

// Name returns the platform segment used for tools/{platform} layouts.
func Name() string {
	switch runtime.GOOS {
	case "darwin":
		return "macos"
	case "windows":
		return "windows"
	default:
		return "linux"
	}
}

// SystemSearchPaths lists well-known install locations probed as a last
// resort. The macOS application bundle is deliberately absent: it is
// read-only and code-signed.
func SystemSearchPaths() []string {
	if IsDarwin() {
		return []string{"/opt/homebrew/bin", "/usr/local/bin"}
	}
	return nil
}

// BrewAvailable reports whether the Homebrew package manager is installed.
func BrewAvailable() bool {
	if !IsDarwin() {
		return false
	}
	_, err := exec.LookPath("brew")
	return err == nil
}

// BrewInstalled reports whether pkg is currently installed per Homebrew,
// returning the binary path when it is.
func BrewInstalled(pkg, executable string) (string, bool) {
	if pkg == "" || !BrewAvailable() {
		return "", false
	}
	out, err := exec.Command("brew", "list", "--versions", pkg).Output()
	if err != nil || strings.TrimSpace(string(out)) == "" {
		return "", false
	}
	prefix, err := exec.Command("brew", "--prefix").Output()
	if err != nil {
		return "", false
	}
	path := filepath.Join(strings.TrimSpace(string(prefix)), "bin", executable)
	if !RegularFileExists(path) {
		// Fall back to PATH; kegs occasionally link elsewhere.
		if p, lerr := exec.LookPath(executable); lerr == nil {
			return p, true
		}
		return "", false
	}
	return path, true
}

// RegularFileExists reports whether path names an existing regular file.
func RegularFileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ExecutableDir returns the directory containing the running executable.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}
