package plan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"convertsave/internal/execute"
)

// heicTileSize is the fixed tile edge used by camera HEIC grids.
const heicTileSize = 512

// HEICPlan is the multi-pass pipeline that reassembles a tiled HEIC into
// the target format: probe the grid geometry, extract the tiles, stitch
// them, then crop/rotate/re-encode.
type HEICPlan struct {
	Binary string
	Input  string
	Output string
}

func newHEICPlan(binary, input, output string) *HEICPlan {
	return &HEICPlan{Binary: binary, Input: input, Output: output}
}

// tileGrid is the geometry parsed from the probe pass.
type tileGrid struct {
	Width    int
	Height   int
	Rotation int
}

var (
	tileGridRe = regexp.MustCompile(`(\d+)x(\d+)`)
	rotationRe = regexp.MustCompile(`rotation of (-?\d+)`)
)

// parseTileGrid scans FFmpeg's diagnostic output for the tile grid line and
// an optional display rotation.
func parseTileGrid(diagnostic string) (tileGrid, error) {
	var grid tileGrid
	found := false
	for _, line := range strings.Split(diagnostic, "\n") {
		if !strings.Contains(line, "Tile Grid:") {
			continue
		}
		if !strings.Contains(line, "hevc") && !strings.Contains(line, "default") {
			continue
		}
		m := tileGridRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		grid.Width, _ = strconv.Atoi(m[1])
		grid.Height, _ = strconv.Atoi(m[2])
		found = true
		break
	}
	if !found || grid.Width <= 0 || grid.Height <= 0 {
		return tileGrid{}, fmt.Errorf("no tile grid found in probe output")
	}
	if m := rotationRe.FindStringSubmatch(diagnostic); m != nil {
		switch m[1] {
		case "-90", "90", "180", "-180":
			grid.Rotation, _ = strconv.Atoi(m[1])
		}
	}
	return grid, nil
}

// Execute runs the pipeline. The temp directory is named with a unique
// per-process token and is removed on every exit path.
func (h *HEICPlan) Execute(ctx context.Context, runner execute.Runner) error {
	workDir := filepath.Join(os.TempDir(), "convertsave-heic-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create HEIC work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Pass 1: probe grid geometry. FFmpeg exits non-zero for -f null on
	// grid images; the diagnostic output is what matters.
	probe, err := runner.Run(ctx, h.Binary, []string{"-i", h.Input, "-f", "null", "-"}, nil)
	if err != nil {
		return fmt.Errorf("probe HEIC: %w", err)
	}
	grid, err := parseTileGrid(probe.Stderr + "\n" + probe.Stdout)
	if err != nil {
		return err
	}

	// Pass 2: extract the individual tiles.
	tilePattern := filepath.Join(workDir, "tile_%02d.png")
	res, err := runner.Run(ctx, h.Binary, []string{"-i", h.Input, "-map", "0:g:0", tilePattern}, nil)
	if err != nil {
		return fmt.Errorf("extract HEIC tiles: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("extract HEIC tiles: %s", strings.TrimSpace(res.Stderr))
	}

	cols := (grid.Width + heicTileSize - 1) / heicTileSize
	rows := (grid.Height + heicTileSize - 1) / heicTileSize

	// Pass 3: stitch the tiles into one frame.
	stitched := filepath.Join(workDir, "stitched.png")
	res, err = runner.Run(ctx, h.Binary, []string{
		"-i", tilePattern,
		"-vf", fmt.Sprintf("tile=%dx%d", cols, rows),
		"-frames:v", "1",
		stitched,
	}, nil)
	if err != nil {
		return fmt.Errorf("stitch HEIC tiles: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("stitch HEIC tiles: %s", strings.TrimSpace(res.Stderr))
	}

	// Pass 4: crop the tile padding, apply rotation, re-encode to target.
	var filters []string
	if cols*heicTileSize > grid.Width || rows*heicTileSize > grid.Height {
		filters = append(filters, fmt.Sprintf("crop=%d:%d:0:0", grid.Width, grid.Height))
	}
	switch grid.Rotation {
	case -90:
		filters = append(filters, "transpose=1")
	case 90:
		filters = append(filters, "transpose=2")
	case 180, -180:
		filters = append(filters, "hflip,vflip")
	}

	finalArgs := []string{"-i", stitched}
	if len(filters) > 0 {
		finalArgs = append(finalArgs, "-vf", strings.Join(filters, ","))
	}
	finalArgs = append(finalArgs, "-frames:v", "1", "-y", h.Output)

	res, err = runner.Run(ctx, h.Binary, finalArgs, nil)
	if err != nil {
		return fmt.Errorf("encode HEIC output: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("encode HEIC output: %s", strings.TrimSpace(res.Stderr))
	}
	return nil
}
