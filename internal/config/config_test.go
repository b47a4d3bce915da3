package config

import (
	"os"
	"path/filepath"
	"testing"

	"convertsave/internal/tools"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Conversion.DocumentConversion {
		t.Fatal("document conversion should default off")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[logging]
level = "DEBUG"
format = "JSON"

[license]
api_url = "https://api.example.test/"

[conversion]
document_conversion = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing config, got exists=%v path=%q", exists, resolved)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("normalization failed: %+v", cfg.Logging)
	}
	if cfg.License.APIURL != "https://api.example.test" {
		t.Fatalf("api url not trimmed: %q", cfg.License.APIURL)
	}
	if !cfg.Conversion.DocumentConversion {
		t.Fatal("document conversion not parsed")
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestToolConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	tc, err := LoadToolConfig(path)
	if err != nil {
		t.Fatalf("LoadToolConfig on missing file: %v", err)
	}
	if got := tc.Get(tools.FFmpeg); got != "" {
		t.Fatalf("expected empty override, got %q", got)
	}

	if err := tc.Set(tools.FFmpeg, "/opt/ffmpeg/bin/ffmpeg"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tc.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadToolConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := loaded.Get(tools.FFmpeg); got != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("override lost: %q", got)
	}

	if err := loaded.Clear(tools.FFmpeg); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := loaded.Get(tools.FFmpeg); got != "" {
		t.Fatalf("expected cleared override, got %q", got)
	}
}

func TestToolConfigRejectsRename(t *testing.T) {
	tc := &ToolConfig{}
	if err := tc.Set(tools.Rename, "/bin/cp"); err == nil {
		t.Fatal("expected error for pseudo-tool override")
	}
}
