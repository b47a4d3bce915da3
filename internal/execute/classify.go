package execute

import (
	"fmt"
	"strings"

	"convertsave/internal/platform"
	"convertsave/internal/tools"
)

// Classify turns a finished run into a user-facing error, or nil when the
// tool exited zero. Rules apply in priority order; the raw stderr is the
// fallback. outExt is the requested output format, used to point at the
// raster engine for formats only it can encode.
func Classify(res Result, tool tools.ID, outExt string) error {
	if res.ExitCode == 0 {
		return nil
	}

	stderr := res.Stderr
	lower := strings.ToLower(stderr)

	switch {
	case strings.Contains(lower, "does not contain any stream"):
		return fmt.Errorf("this file has no required stream for this conversion")

	case strings.Contains(lower, "unable to choose an output format") && mentionsRasterOnly(lower):
		return fmt.Errorf("format %s requires ImageMagick; please install it", strings.ToUpper(outExt))

	case strings.Contains(lower, "unknown encoder"),
		strings.Contains(lower, "encoder not found"),
		strings.Contains(lower, "libx265"),
		strings.Contains(lower, "libaom-av1"):
		return fmt.Errorf("codec not available in this %s build", tool.DisplayName())

	case strings.Contains(lower, "invalid argument") && strings.Contains(lower, "error opening output file"):
		return fmt.Errorf("cannot write to the output location")

	case strings.Contains(lower, "no such file or directory"),
		strings.Contains(lower, "does not exist"):
		return fmt.Errorf("input file not found")

	case res.Stdout == "" && stderr == "":
		if platform.IsDarwin() && res.ExitCode == 9 {
			return fmt.Errorf("%s was killed by macOS (likely quarantine, signing, or missing dependencies)", tool.DisplayName())
		}
		return fmt.Errorf("%s failed to start (architecture or dependency mismatch)", tool.DisplayName())

	default:
		return fmt.Errorf("%s", strings.TrimSpace(stderr))
	}
}

func mentionsRasterOnly(stderr string) bool {
	for _, ext := range []string{"heic", "heif", "avif", "xbm", "xpm", "xwd"} {
		if strings.Contains(stderr, ext) {
			return true
		}
	}
	return false
}
