package main

import (
	"path/filepath"
	"testing"

	"convertsave/internal/config"
)

func TestBuildSocketPath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(t.TempDir(), "data")

	expected := filepath.Join(cfg.AppDataDir(), "convertsave.sock")
	if got := buildSocketPath(&cfg); got != expected {
		t.Fatalf("expected socket path %q, got %q", expected, got)
	}

	if got := buildSocketPath(nil); got != filepath.Join("", "convertsave.sock") {
		t.Fatalf("expected default socket path %q, got %q", filepath.Join("", "convertsave.sock"), got)
	}
}
