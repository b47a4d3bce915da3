// Package execute spawns planned tool commands, captures their output, and
// classifies failures into messages the desktop shell can show directly.
package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"convertsave/internal/platform"
)

// Result captures one finished child process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner abstracts command execution for testability.
type Runner interface {
	Run(ctx context.Context, binary string, args []string, env map[string]string) (Result, error)
}

// CommandRunner runs commands via os/exec. The console window is suppressed
// on Windows so conversions never flash a terminal.
type CommandRunner struct{}

// Run starts the binary and waits for it to exit, returning captured output.
// A non-zero exit is reported through Result.ExitCode, not the error; the
// error covers spawn failures only.
func (CommandRunner) Run(ctx context.Context, binary string, args []string, env map[string]string) (Result, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	platform.HideConsole(cmd)

	if len(env) > 0 {
		merged := os.Environ()
		for key, value := range env {
			merged = append(merged, key+"="+value)
		}
		cmd.Env = merged
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("start %s: %w", binary, err)
	}
	return result, nil
}
