package plan

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"convertsave/internal/format"
	"convertsave/internal/platform"
	"convertsave/internal/tools"
)

func (p *Planner) buildMagick(ctx context.Context, binary, input, output, extra string) (Plan, error) {
	inExt := extOf(input)
	outExt := extOf(output)

	inputToken := input
	if format.IsAnimated(inExt) && !format.IsAnimated(outExt) {
		// Select only the first frame of animated inputs.
		inputToken += "[0]"
	}

	args := []string{inputToken}

	if !format.SupportsAlpha(outExt) && p.magickHasAlpha(ctx, binary, input) {
		args = append(args, "-background", "white", "-flatten")
	}

	args = append(args, magickOutputFlags(outExt)...)
	args = append(args, tokenize(extra)...)
	args = append(args, output)

	return Plan{
		Tool:   tools.ImageMagick,
		Input:  input,
		Output: output,
		Command: &Step{
			Binary: binary,
			Args:   args,
			Env:    magickEnv(binary),
		},
	}, nil
}

// magickOutputFlags returns the per-format quality and preparation flags.
func magickOutputFlags(outExt string) []string {
	switch outExt {
	case "ico":
		// The ICO container caps per-image dimensions at 256.
		return []string{"-resize", "256x256", "-gravity", "center", "-extent", "256x256", "-background", "transparent"}
	case "heic", "heif", "avif":
		return []string{"-quality", "85"}
	case "jxl":
		return []string{"-quality", "90"}
	case "webp":
		return []string{"-quality", "90"}
	case "jpg", "jpeg":
		return []string{"-quality", "90"}
	case "j2k", "jp2", "jpc", "jpf", "jpx", "jpm", "mj2":
		return []string{"-quality", "85"}
	case "tiff", "tif", "exr", "hdr", "dpx":
		return []string{"-quality", "100"}
	case "pdf":
		return []string{"-compress", "jpeg", "-density", "300"}
	case "svg", "svgz":
		return []string{"-density", "300"}
	default:
		return nil
	}
}

// magickHasAlpha probes the input's channel list via identify. A probe
// failure is treated as "no alpha": flattening opaque images is harmless
// compared to failing the conversion outright.
func (p *Planner) magickHasAlpha(ctx context.Context, binary, input string) bool {
	res, err := p.runner.Run(ctx, binary, []string{"identify", "-format", "%[channels]", input + "[0]"}, magickEnv(binary))
	if err != nil || res.ExitCode != 0 {
		return false
	}
	return channelsHaveAlpha(res.Stdout)
}

// channelsHaveAlpha matches the alpha token in identify's %[channels]
// output ("srgba", "graya", "cmyka", or a spelled-out "alpha"/"matte").
// A plain substring match would trip on "gray".
func channelsHaveAlpha(channels string) bool {
	for _, tok := range strings.Fields(strings.ToLower(channels)) {
		tok = strings.Trim(tok, ",")
		switch {
		case tok == "alpha", tok == "matte":
			return true
		case len(tok) > 1 && strings.HasSuffix(tok, "a"):
			return true
		}
	}
	return false
}

// magickEnv builds the macOS environment overrides that point a cached
// ImageMagick at its sibling lib/ and etc/ trees. Elsewhere the binary is
// self-contained and no overrides are needed.
func magickEnv(binary string) map[string]string {
	if !platform.IsDarwin() || binary == "" {
		return nil
	}
	binDir := filepath.Dir(binary)
	if filepath.Base(binDir) != "bin" {
		return nil
	}
	home := filepath.Dir(binDir)

	env := map[string]string{
		"DYLD_LIBRARY_PATH":     filepath.Join(home, "lib"),
		"MAGICK_HOME":           home,
		"MAGICK_CONFIGURE_PATH": filepath.Join(home, "etc", "ImageMagick-7"),
	}
	coders := filepath.Join(home, "lib", "ImageMagick-7", "modules-Q16HDRI", "coders")
	if info, err := os.Stat(coders); err == nil && info.IsDir() {
		env["MAGICK_CODER_MODULE_PATH"] = coders
	}
	return env
}
