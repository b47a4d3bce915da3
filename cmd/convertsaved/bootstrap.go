package main

import (
	"path/filepath"

	"convertsave/internal/config"
)

func buildSocketPath(cfg *config.Config) string {
	if cfg == nil {
		return filepath.Join("", "convertsave.sock")
	}
	return cfg.SocketPath()
}
