// Package testsupport provides shared helpers for package tests: a
// scriptable command runner and temp-directory config construction.
package testsupport

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"convertsave/internal/config"
	"convertsave/internal/execute"
)

// Call records one invocation seen by the fake runner.
type Call struct {
	Binary string
	Args   []string
	Env    map[string]string
}

// Response scripts the result for an invocation.
type Response struct {
	Result execute.Result
	Err    error
}

// FakeRunner implements execute.Runner with scripted responses keyed by a
// substring of the joined argument vector. Unmatched invocations succeed
// with empty output.
type FakeRunner struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]Response
}

// NewFakeRunner constructs an empty fake.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string]Response)}
}

// Script registers a response for invocations whose joined args contain key.
func (f *FakeRunner) Script(key string, res execute.Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key] = Response{Result: res, Err: err}
}

// Run implements execute.Runner.
func (f *FakeRunner) Run(_ context.Context, binary string, args []string, env map[string]string) (execute.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Binary: binary, Args: append([]string(nil), args...), Env: env})
	joined := strings.Join(args, " ")
	for key, resp := range f.responses {
		if strings.Contains(joined, key) {
			return resp.Result, resp.Err
		}
	}
	return execute.Result{}, nil
}

// Calls returns the recorded invocations.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// LastCall returns the most recent invocation, failing the test when none
// was made.
func (f *FakeRunner) LastCall(t *testing.T) Call {
	t.Helper()
	calls := f.Calls()
	if len(calls) == 0 {
		t.Fatal("no command was run")
	}
	return calls[len(calls)-1]
}

// NewConfig returns a Config rooted in fresh temp directories.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// ArgsContainInOrder fails the test unless want appears as a subsequence of
// args in the given order.
func ArgsContainInOrder(t *testing.T, args []string, want ...string) {
	t.Helper()
	idx := 0
	for _, arg := range args {
		if idx < len(want) && arg == want[idx] {
			idx++
		}
	}
	if idx != len(want) {
		t.Fatalf("args %v do not contain %v in order (matched %d)", args, want, idx)
	}
}

// String formats a call for failure messages.
func (c Call) String() string {
	return fmt.Sprintf("%s %s", c.Binary, strings.Join(c.Args, " "))
}
