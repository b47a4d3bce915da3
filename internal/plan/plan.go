// Package plan builds the command line for each conversion: the tool
// binary, its argument vector, environment overrides, and the multi-pass
// HEIC reassembly pipeline. Each external tool's argument grammar is
// treated as a stable contract.
package plan

import (
	"context"
	"fmt"
	"strings"

	"convertsave/internal/execute"
	"convertsave/internal/format"
	"convertsave/internal/tools"
)

// Step is one external command invocation.
type Step struct {
	Binary string
	Args   []string
	Env    map[string]string
}

// Plan describes how to produce Output from Input. Exactly one of Copy,
// Command, and HEIC is set.
type Plan struct {
	Tool   tools.ID
	Input  string
	Output string

	// Copy marks the rename pseudo-tool: a plain file copy.
	Copy bool
	// Command is the single tool invocation for ordinary conversions.
	Command *Step
	// HEIC is the tile-reassembly pipeline for HEIC/HEIF inputs handled
	// by FFmpeg.
	HEIC *HEICPlan

	// PostRename, when set, names the file the tool will actually produce;
	// the engine moves it onto Output after the command succeeds.
	PostRename string
}

// Planner builds conversion plans. The runner is used for input probes
// (alpha-channel detection) at planning time.
type Planner struct {
	runner execute.Runner
}

// New constructs a Planner.
func New(runner execute.Runner) *Planner {
	if runner == nil {
		runner = execute.CommandRunner{}
	}
	return &Planner{runner: runner}
}

// Build returns the plan for converting input to output with the given
// tool. binary is the resolved tool path ("" for the rename pseudo-tool).
// extra carries user-supplied advanced options as a whitespace-delimited
// string appended after the defaults.
func (p *Planner) Build(ctx context.Context, tool tools.ID, binary, input, output, extra string) (Plan, error) {
	switch tool {
	case tools.Rename:
		return Plan{Tool: tool, Input: input, Output: output, Copy: true}, nil
	case tools.ImageMagick:
		return p.buildMagick(ctx, binary, input, output, extra)
	case tools.FFmpeg:
		return p.buildFFmpeg(ctx, binary, input, output, extra)
	case tools.Pandoc:
		return buildPandoc(binary, input, output, extra), nil
	case tools.LibreOffice:
		return buildSoffice(binary, input, output, extra), nil
	default:
		return Plan{}, fmt.Errorf("no planner for tool %q", tool)
	}
}

func extOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return format.Normalize(path[idx+1:])
}

// tokenize splits a whitespace-delimited advanced-options string.
func tokenize(extra string) []string {
	return strings.Fields(extra)
}
