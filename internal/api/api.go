// Package api implements the command surface behind the IPC layer: format
// suggestions, conversions, tool management, update checks, and license
// operations.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"convertsave/internal/config"
	"convertsave/internal/execute"
	"convertsave/internal/fileutil"
	"convertsave/internal/format"
	"convertsave/internal/history"
	"convertsave/internal/license"
	"convertsave/internal/logging"
	"convertsave/internal/plan"
	"convertsave/internal/platform"
	"convertsave/internal/provision"
	"convertsave/internal/resolver"
	"convertsave/internal/routing"
	"convertsave/internal/tools"
	"convertsave/internal/updates"
)

// ErrUnsupportedConversion indicates routing produced no tool for the pair.
var ErrUnsupportedConversion = errors.New("unsupported conversion")

// Service wires the conversion pipeline together. All methods are safe for
// concurrent use; shared mutable state lives on disk (tool overrides, the
// per-tool cache) as last-writer-wins.
type Service struct {
	cfg         *config.Config
	logger      *slog.Logger
	resolver    *resolver.Resolver
	planner     *plan.Planner
	runner      execute.Runner
	provisioner *provision.Provisioner
	updates     *updates.Client
	license     *license.Manager
	history     *history.Store
}

// Deps carries the collaborators for New. Runner and History may be nil;
// History being nil disables conversion records.
type Deps struct {
	Config      *config.Config
	Logger      *slog.Logger
	Resolver    *resolver.Resolver
	Provisioner *provision.Provisioner
	Updates     *updates.Client
	License     *license.Manager
	History     *history.Store
	Runner      execute.Runner
}

func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	runner := deps.Runner
	if runner == nil {
		runner = execute.CommandRunner{}
	}
	return &Service{
		cfg:         deps.Config,
		logger:      logging.NewComponentLogger(logger, "api"),
		resolver:    deps.Resolver,
		planner:     plan.New(runner),
		runner:      runner,
		provisioner: deps.Provisioner,
		updates:     deps.Updates,
		license:     deps.License,
		history:     deps.History,
	}
}

func (s *Service) routeOptions() routing.Options {
	return routing.Options{DocumentConversion: s.cfg.Conversion.DocumentConversion}
}

// AvailableFormats lists the conversion targets offered for an input
// extension.
func (s *Service) AvailableFormats(inExt string) []format.Suggestion {
	return format.Suggestions(inExt, func(in, out string) (string, bool) {
		id, ok := routing.Route(in, out, s.routeOptions())
		return string(id), ok
	})
}

// ConvertRequest describes one conversion.
type ConvertRequest struct {
	InputPath    string
	OutputFormat string
	OutputDir    string
	Extra        string
}

// Convert runs a conversion end to end and returns the produced path.
func (s *Service) Convert(ctx context.Context, req ConvertRequest) (string, error) {
	if _, err := os.Stat(req.InputPath); err != nil {
		return "", fmt.Errorf("input file: %w", err)
	}

	inExt := format.Normalize(strings.TrimPrefix(filepath.Ext(req.InputPath), "."))
	outExt := format.Normalize(req.OutputFormat)

	tool, ok := routing.Route(inExt, outExt, s.routeOptions())
	if !ok {
		return "", fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion,
			displayExt(inExt), displayExt(outExt))
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(req.InputPath)
	}
	stem := strings.TrimSuffix(filepath.Base(req.InputPath), filepath.Ext(req.InputPath))
	outputPath, err := fileutil.UniquePath(outDir, stem, outExt)
	if err != nil {
		return "", fmt.Errorf("allocate output name: %w", err)
	}

	binary := ""
	if tool != tools.Rename {
		inst, err := s.resolver.Resolve(tool)
		if err != nil {
			return "", missingToolError(tool, outExt, err)
		}
		binary = inst.Path
	}

	p, err := s.planner.Build(ctx, tool, binary, req.InputPath, outputPath, req.Extra)
	if err != nil {
		return "", err
	}

	s.logger.Info("converting",
		logging.String(logging.FieldTool, string(tool)),
		logging.String("input", req.InputPath),
		logging.String("output", outputPath))

	if err := s.executePlan(ctx, p); err != nil {
		return "", err
	}

	if s.history != nil {
		if _, err := s.history.Record(ctx, req.InputPath, outputPath, tool); err != nil {
			s.logger.Warn("recording conversion failed", logging.Error(err))
		}
	}
	return outputPath, nil
}

func (s *Service) executePlan(ctx context.Context, p plan.Plan) error {
	switch {
	case p.Copy:
		if err := fileutil.CopyFileVerified(p.Input, p.Output); err != nil {
			return fmt.Errorf("copy file: %w", err)
		}
		return nil
	case p.HEIC != nil:
		return p.HEIC.Execute(ctx, s.runner)
	case p.Command != nil:
		res, err := s.runner.Run(ctx, p.Command.Binary, p.Command.Args, p.Command.Env)
		if err != nil {
			return fmt.Errorf("start %s: %w", p.Tool.DisplayName(), err)
		}
		if clsErr := execute.Classify(res, p.Tool, extOf(p.Output)); clsErr != nil {
			if p.Tool == tools.ImageMagick && res.Stdout == "" && res.Stderr == "" && platform.IsDarwin() {
				if diag := execute.DiagnoseBinary(ctx, s.logger, p.Command.Binary); diag != "" {
					return fmt.Errorf("%w\n%s", clsErr, diag)
				}
			}
			return clsErr
		}
		if p.PostRename != "" && p.PostRename != p.Output {
			if err := os.Rename(p.PostRename, p.Output); err != nil {
				return fmt.Errorf("move produced file into place: %w", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("empty conversion plan")
	}
}

// ConvertImagesToPDF combines the given images into one multi-page PDF.
func (s *Service) ConvertImagesToPDF(ctx context.Context, inputPaths []string, outputDir string) (string, error) {
	if len(inputPaths) == 0 {
		return "", fmt.Errorf("no input files given")
	}
	for _, p := range inputPaths {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("input file: %w", err)
		}
		ext := extOf(p)
		if !format.IsImageInput(ext) {
			return "", fmt.Errorf("%s is not a supported image format", displayExt(ext))
		}
	}

	inst, err := s.resolver.Resolve(tools.ImageMagick)
	if err != nil {
		return "", missingToolError(tools.ImageMagick, "pdf", err)
	}

	if outputDir == "" {
		outputDir = filepath.Dir(inputPaths[0])
	}
	stem := strings.TrimSuffix(filepath.Base(inputPaths[0]), filepath.Ext(inputPaths[0]))
	outputPath, err := fileutil.UniquePath(outputDir, stem, "pdf")
	if err != nil {
		return "", fmt.Errorf("allocate output name: %w", err)
	}

	args := append([]string{}, inputPaths...)
	args = append(args, "-compress", "jpeg", "-density", "300", outputPath)

	res, err := s.runner.Run(ctx, inst.Path, args, nil)
	if err != nil {
		return "", fmt.Errorf("start %s: %w", tools.ImageMagick.DisplayName(), err)
	}
	if clsErr := execute.Classify(res, tools.ImageMagick, "pdf"); clsErr != nil {
		return "", clsErr
	}

	if s.history != nil {
		if _, err := s.history.Record(ctx, inputPaths[0], outputPath, tools.ImageMagick); err != nil {
			s.logger.Warn("recording conversion failed", logging.Error(err))
		}
	}
	return outputPath, nil
}

// FileInfo is basic metadata for a dropped file.
type FileInfo struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
}

// GetFileInfo stats the path and reports name, size, and normalized
// extension.
func (s *Service) GetFileInfo(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Name:      filepath.Base(path),
		Size:      info.Size(),
		Extension: extOf(path),
	}, nil
}

// OpenFolder reveals the path in the platform file manager. A file argument
// selects the file; a directory argument opens it.
func (s *Service) OpenFolder(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	var binary string
	var args []string
	switch {
	case platform.IsDarwin():
		binary = "open"
		if info.IsDir() {
			args = []string{path}
		} else {
			args = []string{"-R", path}
		}
	case platform.IsWindows():
		binary = "explorer"
		if info.IsDir() {
			args = []string{path}
		} else {
			args = []string{"/select," + path}
		}
	default:
		binary = "xdg-open"
		target := path
		if !info.IsDir() {
			target = filepath.Dir(path)
		}
		args = []string{target}
	}

	if _, err := s.runner.Run(ctx, binary, args, nil); err != nil {
		return fmt.Errorf("open file manager: %w", err)
	}
	return nil
}

func displayExt(ext string) string {
	if ext == "" {
		return "(no extension)"
	}
	return strings.ToUpper(ext)
}

// missingToolError adds an install hint. HEIC/HEIF and X Window outputs only
// work through ImageMagick, which users frequently do not have yet.
func missingToolError(tool tools.ID, outExt string, err error) error {
	if errors.Is(err, resolver.ErrNotFound) {
		if tool == tools.ImageMagick && (format.IsHEICFamily(outExt) || format.IsXWindow(outExt)) {
			return fmt.Errorf("%s output requires %s, which is not installed; download it from the Tools menu",
				strings.ToUpper(outExt), tool.DisplayName())
		}
		return fmt.Errorf("%s is not installed; download it from the Tools menu", tool.DisplayName())
	}
	return fmt.Errorf("locate %s: %w", tool.DisplayName(), err)
}

func extOf(path string) string {
	return format.Normalize(strings.TrimPrefix(filepath.Ext(path), "."))
}
