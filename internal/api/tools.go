package api

import (
	"context"
	"fmt"
	"strings"

	"convertsave/internal/config"
	"convertsave/internal/history"
	"convertsave/internal/license"
	"convertsave/internal/logging"
	"convertsave/internal/tools"
	"convertsave/internal/updates"
)

// ToolStatus reports availability of one tool.
type ToolStatus struct {
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
	Source    string `json:"source,omitempty"`
}

// ToolsStatus resolves every real tool and reports what was found.
func (s *Service) ToolsStatus(ctx context.Context) map[string]ToolStatus {
	out := make(map[string]ToolStatus)
	for _, id := range tools.All() {
		if id == tools.Rename {
			continue
		}
		inst, err := s.resolver.Resolve(id)
		if err != nil {
			out[string(id)] = ToolStatus{}
			continue
		}
		out[string(id)] = ToolStatus{Available: true, Path: inst.Path, Source: string(inst.Source)}
	}
	return out
}

// TestToolResult is the outcome of a tool self-test.
type TestToolResult struct {
	Tool    string `json:"tool"`
	Path    string `json:"path"`
	Version string `json:"version"`
}

// TestTool resolves the tool and runs its version command.
func (s *Service) TestTool(ctx context.Context, name string) (TestToolResult, error) {
	id, err := tools.Parse(name)
	if err != nil {
		return TestToolResult{}, err
	}
	if id == tools.Rename {
		return TestToolResult{}, fmt.Errorf("%q has no binary to test", name)
	}
	inst, err := s.resolver.Resolve(id)
	if err != nil {
		return TestToolResult{}, missingToolError(id, "", err)
	}
	banner, err := s.versionBanner(ctx, inst.Path, id)
	if err != nil {
		return TestToolResult{}, err
	}
	return TestToolResult{Tool: string(id), Path: inst.Path, Version: banner}, nil
}

// DownloadTool installs or upgrades a tool through the provisioner.
func (s *Service) DownloadTool(ctx context.Context, name string) (string, error) {
	id, err := tools.Parse(name)
	if err != nil {
		return "", err
	}
	path, err := s.provisioner.Install(ctx, id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s installed at %s", id.DisplayName(), path), nil
}

// CheckUpdates resolves installed versions and compares them against the
// upstream release feeds.
func (s *Service) CheckUpdates(ctx context.Context) map[string]updates.Info {
	installed := make(map[tools.ID]string)
	for _, id := range []tools.ID{tools.FFmpeg, tools.ImageMagick, tools.Pandoc} {
		inst, err := s.resolver.Resolve(id)
		if err != nil {
			continue
		}
		banner, err := s.versionBanner(ctx, inst.Path, id)
		if err != nil {
			s.logger.Warn("version probe failed",
				logging.String(logging.FieldTool, string(id)),
				logging.Error(err))
			installed[id] = ""
			continue
		}
		installed[id] = parseVersion(id, banner)
	}
	return s.updates.Check(ctx, installed)
}

// SetToolPath records a user override for the tool's binary.
func (s *Service) SetToolPath(id tools.ID, path string) error {
	tc, err := config.LoadToolConfig(s.cfg.ToolConfigPath())
	if err != nil {
		return err
	}
	if err := tc.Set(id, path); err != nil {
		return err
	}
	return tc.Save(s.cfg.ToolConfigPath())
}

// ClearToolPath removes a user override.
func (s *Service) ClearToolPath(id tools.ID) error {
	tc, err := config.LoadToolConfig(s.cfg.ToolConfigPath())
	if err != nil {
		return err
	}
	if err := tc.Clear(id); err != nil {
		return err
	}
	return tc.Save(s.cfg.ToolConfigPath())
}

// LicenseStatus reports the current license state.
func (s *Service) LicenseStatus(ctx context.Context) license.Status {
	return s.license.Startup(ctx)
}

// ActivateLicense validates and stores a product key.
func (s *Service) ActivateLicense(ctx context.Context, productKey string) license.Status {
	return s.license.Activate(ctx, productKey)
}

// DeactivateLicense releases the license for this device.
func (s *Service) DeactivateLicense(ctx context.Context) license.Status {
	return s.license.Deactivate(ctx)
}

// ChangeProductKey swaps the current license for one on a new key.
func (s *Service) ChangeProductKey(ctx context.Context, productKey string) license.Status {
	return s.license.ChangeProductKey(ctx, productKey)
}

// DeviceID returns this machine's license-binding identity.
func (s *Service) DeviceID() (string, error) {
	return s.license.DeviceID()
}

// CurrentProductKey returns the stored product key.
func (s *Service) CurrentProductKey() (string, error) {
	return s.license.CurrentProductKey()
}

// RecentConversions lists the latest history entries.
func (s *Service) RecentConversions(ctx context.Context, limit int) ([]history.Entry, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.Recent(ctx, limit)
}

// versionBanner runs the tool's version command and returns the first line
// of output.
func (s *Service) versionBanner(ctx context.Context, binary string, id tools.ID) (string, error) {
	res, err := s.runner.Run(ctx, binary, id.VersionArgs(), nil)
	if err != nil {
		return "", fmt.Errorf("run %s: %w", id.DisplayName(), err)
	}
	out := res.Stdout
	if strings.TrimSpace(out) == "" {
		out = res.Stderr
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	if line == "" {
		return "", fmt.Errorf("%s produced no version output", id.DisplayName())
	}
	return strings.TrimSpace(line), nil
}

// parseVersion extracts the bare version token from a version banner.
func parseVersion(id tools.ID, banner string) string {
	fields := strings.Fields(banner)
	switch id {
	case tools.FFmpeg:
		// "ffmpeg version 7.1.1 Copyright ..."
		for i, f := range fields {
			if f == "version" && i+1 < len(fields) {
				return fields[i+1]
			}
		}
	case tools.ImageMagick:
		// "Version: ImageMagick 7.1.1-43 Q16-HDRI ..."
		for i, f := range fields {
			if f == "ImageMagick" && i+1 < len(fields) {
				return fields[i+1]
			}
		}
	case tools.Pandoc, tools.LibreOffice:
		// "pandoc 3.6.3" / "LibreOffice 24.8.4.2 ..."
		if len(fields) > 1 {
			return fields[1]
		}
	}
	return banner
}
