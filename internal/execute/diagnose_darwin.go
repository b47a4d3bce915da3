//go:build darwin

package execute

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"convertsave/internal/logging"
)

// DiagnoseBinary gathers architecture, dependency, and quarantine details
// for a binary that produced no output, and attempts to clear the
// com.apple.quarantine attribute. Findings are logged; the returned summary
// is attached to the user-facing error.
func DiagnoseBinary(ctx context.Context, logger *slog.Logger, path string) string {
	var findings []string

	if out, err := exec.CommandContext(ctx, "file", path).Output(); err == nil {
		findings = append(findings, "binary: "+strings.TrimSpace(string(out)))
	}
	if out, err := exec.CommandContext(ctx, "uname", "-m").Output(); err == nil {
		findings = append(findings, "machine: "+strings.TrimSpace(string(out)))
	}
	if info, err := os.Stat(path); err == nil {
		findings = append(findings, fmt.Sprintf("mode: %s", info.Mode()))
	}

	if out, err := exec.CommandContext(ctx, "otool", "-L", path).Output(); err == nil {
		for _, line := range strings.Split(string(out), "\n")[1:] {
			dep := strings.TrimSpace(line)
			if idx := strings.Index(dep, " ("); idx > 0 {
				dep = dep[:idx]
			}
			if dep == "" || strings.HasPrefix(dep, "/usr/lib/") || strings.HasPrefix(dep, "/System/") {
				continue
			}
			if _, statErr := os.Stat(dep); statErr != nil {
				findings = append(findings, "missing dependency: "+dep)
			}
		}
	}

	if out, err := exec.CommandContext(ctx, "xattr", path).Output(); err == nil {
		attrs := strings.TrimSpace(string(out))
		if strings.Contains(attrs, "com.apple.quarantine") {
			findings = append(findings, "quarantined: yes")
			if err := exec.CommandContext(ctx, "xattr", "-d", "com.apple.quarantine", path).Run(); err == nil {
				findings = append(findings, "quarantine attribute cleared; retry the conversion")
			}
		}
	}

	summary := strings.Join(findings, "; ")
	if logger != nil {
		logger.Warn("binary diagnostics", logging.String("path", path), logging.String("findings", summary))
	}
	return summary
}
