package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"convertsave/internal/tools"
)

// ToolConfig records user-supplied absolute paths that override tool
// resolution. It is persisted as config.json in the app data directory and
// created lazily on the first override.
type ToolConfig struct {
	FFmpegPath      string `json:"ffmpegPath,omitempty"`
	ImageMagickPath string `json:"imagemagickPath,omitempty"`
	PandocPath      string `json:"pandocPath,omitempty"`
	SofficePath     string `json:"sofficePath,omitempty"`
}

// LoadToolConfig reads the override record, returning an empty record when
// the file does not exist yet.
func LoadToolConfig(path string) (*ToolConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ToolConfig{}, nil
		}
		return nil, fmt.Errorf("read tool config: %w", err)
	}
	var tc ToolConfig
	if err := json.Unmarshal(data, &tc); err != nil {
		return nil, fmt.Errorf("parse tool config: %w", err)
	}
	return &tc, nil
}

// Save writes the record back to disk, creating parent directories as needed.
func (tc *ToolConfig) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create tool config directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(tc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tool config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write tool config: %w", err)
	}
	return nil
}

// Get returns the override path for a tool, or "" when unset.
func (tc *ToolConfig) Get(id tools.ID) string {
	switch id {
	case tools.FFmpeg:
		return tc.FFmpegPath
	case tools.ImageMagick:
		return tc.ImageMagickPath
	case tools.Pandoc:
		return tc.PandocPath
	case tools.LibreOffice:
		return tc.SofficePath
	default:
		return ""
	}
}

// Set records an override path for a tool.
func (tc *ToolConfig) Set(id tools.ID, path string) error {
	path = strings.TrimSpace(path)
	switch id {
	case tools.FFmpeg:
		tc.FFmpegPath = path
	case tools.ImageMagick:
		tc.ImageMagickPath = path
	case tools.Pandoc:
		tc.PandocPath = path
	case tools.LibreOffice:
		tc.SofficePath = path
	default:
		return fmt.Errorf("tool %q does not accept a custom path", id)
	}
	return nil
}

// Clear removes the override for a tool.
func (tc *ToolConfig) Clear(id tools.ID) error {
	return tc.Set(id, "")
}
