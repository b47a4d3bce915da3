// Package resolver locates a usable binary for each external tool, probing
// the user override, the platform package manager, the app-data cache, and
// well-known system locations, in that order.
package resolver

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"convertsave/internal/config"
	"convertsave/internal/logging"
	"convertsave/internal/platform"
	"convertsave/internal/tools"
)

// Source records where a resolved binary came from.
type Source string

const (
	SourceOverride       Source = "override"
	SourcePackageManager Source = "package-manager"
	SourceAppCache       Source = "app-cache"
	SourceSystem         Source = "system"
)

// Installation describes a resolved tool binary. It is recomputed on every
// resolution; nothing here is cached between calls.
type Installation struct {
	Tool    tools.ID
	Path    string
	Version string
	Source  Source
}

// ErrNotFound indicates no usable binary was located for the tool.
var ErrNotFound = errors.New("tool not found")

// Resolver performs tool lookups against the filesystem and package manager.
type Resolver struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs a Resolver.
func New(cfg *config.Config, logger *slog.Logger) *Resolver {
	return &Resolver{cfg: cfg, logger: logging.NewComponentLogger(logger, "resolver")}
}

// Resolve locates a binary for the tool. A stale user override (a recorded
// path that no longer names a regular file) is cleared from the persisted
// record before the remaining sources are probed.
func (r *Resolver) Resolve(id tools.ID) (Installation, error) {
	if id == tools.Rename {
		return Installation{}, fmt.Errorf("pseudo-tool %q has no binary", id)
	}

	if path, ok := r.overridePath(id); ok {
		return Installation{Tool: id, Path: path, Source: SourceOverride}, nil
	}

	if pkg := id.BrewPackage(); pkg != "" {
		if path, ok := platform.BrewInstalled(pkg, id.ExecutableName()); ok {
			return Installation{Tool: id, Path: path, Source: SourcePackageManager}, nil
		}
	}

	cached := filepath.Join(r.cfg.ToolCacheDir(string(id)), filepath.FromSlash(id.CacheSubpath()))
	if platform.RegularFileExists(cached) {
		return Installation{Tool: id, Path: cached, Source: SourceAppCache}, nil
	}

	for _, dir := range r.devSearchDirs() {
		candidate := filepath.Join(dir, id.ExecutableName())
		if platform.RegularFileExists(candidate) {
			return Installation{Tool: id, Path: candidate, Source: SourceSystem}, nil
		}
	}

	for _, dir := range platform.SystemSearchPaths() {
		candidate := filepath.Join(dir, id.ExecutableName())
		if platform.RegularFileExists(candidate) {
			return Installation{Tool: id, Path: candidate, Source: SourceSystem}, nil
		}
	}

	return Installation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// overridePath returns the user override when it is still valid, clearing
// stale entries as a side effect.
func (r *Resolver) overridePath(id tools.ID) (string, bool) {
	tcPath := r.cfg.ToolConfigPath()
	tc, err := config.LoadToolConfig(tcPath)
	if err != nil {
		r.logger.Warn("tool config unreadable", logging.Error(err))
		return "", false
	}
	recorded := tc.Get(id)
	if recorded == "" {
		return "", false
	}
	if platform.RegularFileExists(recorded) {
		return recorded, true
	}

	r.logger.Info("clearing stale tool override",
		logging.String(logging.FieldTool, string(id)),
		logging.String("path", recorded))
	if err := tc.Clear(id); err == nil {
		if err := tc.Save(tcPath); err != nil {
			r.logger.Warn("persist cleared override", logging.Error(err))
		}
	}
	return "", false
}

// devSearchDirs lists the development-layout locations: a project-local
// tools/{platform} directory and, off macOS, the same layout next to the
// running executable.
func (r *Resolver) devSearchDirs() []string {
	dirs := []string{filepath.Join("tools", platform.Name())}
	if !platform.IsDarwin() {
		if exeDir, err := platform.ExecutableDir(); err == nil {
			dirs = append(dirs, filepath.Join(exeDir, "tools", platform.Name()))
		}
	}
	return dirs
}
