//go:build !darwin

package execute

import (
	"context"
	"log/slog"
)

// DiagnoseBinary has nothing to report outside macOS.
func DiagnoseBinary(context.Context, *slog.Logger, string) string { return "" }
