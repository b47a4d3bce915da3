package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"convertsave/internal/config"
	"convertsave/internal/logging"
	"convertsave/internal/tools"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	return &cfg
}

func writeStub(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestResolveOverrideWins(t *testing.T) {
	cfg := testConfig(t)
	stub := filepath.Join(t.TempDir(), "ffmpeg-custom")
	writeStub(t, stub)

	tc, err := config.LoadToolConfig(cfg.ToolConfigPath())
	if err != nil {
		t.Fatalf("load tool config: %v", err)
	}
	if err := tc.Set(tools.FFmpeg, stub); err != nil {
		t.Fatalf("set override: %v", err)
	}
	if err := tc.Save(cfg.ToolConfigPath()); err != nil {
		t.Fatalf("save tool config: %v", err)
	}

	r := New(cfg, logging.NewNop())
	inst, err := r.Resolve(tools.FFmpeg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if inst.Source != SourceOverride || inst.Path != stub {
		t.Fatalf("unexpected installation: %+v", inst)
	}
}

func TestResolveClearsStaleOverride(t *testing.T) {
	cfg := testConfig(t)

	tc, err := config.LoadToolConfig(cfg.ToolConfigPath())
	if err != nil {
		t.Fatalf("load tool config: %v", err)
	}
	if err := tc.Set(tools.FFmpeg, filepath.Join(t.TempDir(), "gone")); err != nil {
		t.Fatalf("set override: %v", err)
	}
	if err := tc.Save(cfg.ToolConfigPath()); err != nil {
		t.Fatalf("save tool config: %v", err)
	}

	r := New(cfg, logging.NewNop())
	if _, err := r.Resolve(tools.FFmpeg); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	reloaded, err := config.LoadToolConfig(cfg.ToolConfigPath())
	if err != nil {
		t.Fatalf("reload tool config: %v", err)
	}
	if got := reloaded.Get(tools.FFmpeg); got != "" {
		t.Fatalf("stale override not cleared: %q", got)
	}
}

func TestResolveAppCache(t *testing.T) {
	cfg := testConfig(t)
	cached := filepath.Join(cfg.ToolCacheDir(string(tools.FFmpeg)), tools.FFmpeg.ExecutableName())
	writeStub(t, cached)

	r := New(cfg, logging.NewNop())
	inst, err := r.Resolve(tools.FFmpeg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if inst.Source != SourceAppCache || inst.Path != cached {
		t.Fatalf("unexpected installation: %+v", inst)
	}
}

func TestResolveImageMagickCacheLayoutDarwin(t *testing.T) {
	if runtime.GOOS != "darwin" {
		t.Skip("bin/ cache layout applies to macOS only")
	}
	cfg := testConfig(t)
	cached := filepath.Join(cfg.ToolCacheDir(string(tools.ImageMagick)), "bin", "magick")
	writeStub(t, cached)

	r := New(cfg, logging.NewNop())
	inst, err := r.Resolve(tools.ImageMagick)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if inst.Path != cached {
		t.Fatalf("expected bin/ subpath, got %s", inst.Path)
	}
}

func TestResolveRejectsRename(t *testing.T) {
	r := New(testConfig(t), logging.NewNop())
	if _, err := r.Resolve(tools.Rename); err == nil {
		t.Fatal("expected error for pseudo-tool")
	}
}
