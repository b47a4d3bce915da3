package plan

import (
	"context"
	"strings"

	"convertsave/internal/format"
	"convertsave/internal/tools"
)

func (p *Planner) buildFFmpeg(ctx context.Context, binary, input, output, extra string) (Plan, error) {
	inExt := extOf(input)
	outExt := extOf(output)

	// Camera HEICs store a grid of HEVC tiles FFmpeg cannot decode in one
	// pass; those inputs take the reassembly pipeline instead.
	if format.IsHEICFamily(inExt) {
		return Plan{
			Tool:   tools.FFmpeg,
			Input:  input,
			Output: output,
			HEIC:   newHEICPlan(binary, input, output),
		}, nil
	}

	hasAlpha := false
	needsFlatten := !format.SupportsAlpha(outExt)
	if needsFlatten || outExt == "avif" {
		hasAlpha = p.ffmpegHasAlpha(ctx, binary, input)
	}

	var args []string
	switch {
	case outExt == "avif":
		args = avifArgs(input, hasAlpha)
	case needsFlatten && hasAlpha:
		args = flattenArgs(input, outExt)
	default:
		args = []string{"-i", input}
	}

	if outExt != "avif" {
		if format.IsAnimated(inExt) && !format.IsAnimated(outExt) && format.IsFFmpegImageOutput(outExt) {
			args = append(args, "-frames:v", "1")
		}

		switch outExt {
		case "ico":
			args = append(args, "-vf", "scale='min(256,iw)':'min(256,ih)':force_original_aspect_ratio=decrease")
		case "mp4":
			args = append(args, "-pix_fmt", "yuv420p", "-profile:v", "main", "-movflags", "+faststart")
		}

		if format.IsVideoInput(inExt) && format.IsVideoToImageOutput(outExt) {
			args = append(args, "-frames:v", "1")
		}
	}

	args = append(args, tokenize(extra)...)

	if staticImageOutput(outExt) {
		args = append(args, "-update", "1")
	}
	args = append(args, "-y", output)

	return Plan{
		Tool:    tools.FFmpeg,
		Input:   input,
		Output:  output,
		Command: &Step{Binary: binary, Args: args},
	}, nil
}

// flattenArgs composites the input over a synthetic white background to
// drop the alpha channel for formats that cannot carry one.
func flattenArgs(input, outExt string) []string {
	filter := "[1][0]scale=rw:rh[bg];[bg][0]overlay=shortest=1"
	switch outExt {
	case "hdr", "pbm", "pgm", "ppm":
		filter += ",format=rgb24"
	}
	return []string{
		"-i", input,
		"-f", "lavfi", "-i", "color=c=white",
		"-filter_complex", filter,
		"-q:v", "1",
	}
}

// avifArgs builds the still-picture AV1 encode. Transparent inputs map the
// video stream twice and extract the alpha plane into the second.
func avifArgs(input string, hasAlpha bool) []string {
	args := []string{"-i", input}
	if hasAlpha {
		args = append(args, "-map", "0:v", "-map", "0:v", "-filter:v:1", "alphaextract")
	}
	return append(args,
		"-c:v", "libaom-av1",
		"-still-picture", "1",
		"-cpu-used", "6",
		"-crf", "28",
		"-b:v", "0",
		"-row-mt", "1",
		"-frames:v", "1",
	)
}

// staticImageOutput reports whether the target is a single still image,
// which needs -update 1 so FFmpeg does not treat it as an image sequence.
func staticImageOutput(outExt string) bool {
	return format.IsFFmpegImageOutput(outExt) && outExt != "gif"
}

// ffmpegHasAlpha probes the input with a bare -i invocation and looks for
// an alpha-carrying pixel format in the stream description.
func (p *Planner) ffmpegHasAlpha(ctx context.Context, binary, input string) bool {
	res, err := p.runner.Run(ctx, binary, []string{"-i", input, "-hide_banner"}, nil)
	if err != nil {
		return false
	}
	lower := strings.ToLower(res.Stderr)
	for _, pixFmt := range []string{"rgba", "bgra", "argb", "abgr", "yuva", "ya8", "ya16", "gbrap", "pal8"} {
		if strings.Contains(lower, pixFmt) {
			return true
		}
	}
	return false
}

func buildPandoc(binary, input, output, extra string) Plan {
	args := []string{input, "-o", output}
	args = append(args, tokenize(extra)...)
	return Plan{
		Tool:    tools.Pandoc,
		Input:   input,
		Output:  output,
		Command: &Step{Binary: binary, Args: args},
	}
}
