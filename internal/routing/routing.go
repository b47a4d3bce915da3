// Package routing decides which external tool handles a conversion pair.
package routing

import (
	"convertsave/internal/format"
	"convertsave/internal/tools"
)

// Options adjusts routing policy. Document conversion ships feature-gated.
type Options struct {
	DocumentConversion bool
}

// Route maps a normalized (input, output) extension pair to the tool that
// performs the conversion. The bool result is false when the pair is
// unsupported. Policy is ordered; the first matching rule wins.
func Route(inExt, outExt string, opts Options) (tools.ID, bool) {
	in := format.Normalize(inExt)
	out := format.Normalize(outExt)
	if in == "" || out == "" {
		return "", false
	}

	// JPEG and JPG differ only in spelling.
	if (in == "jpg" && out == "jpeg") || (in == "jpeg" && out == "jpg") {
		return tools.Rename, true
	}

	if (format.IsVideoInput(in) || format.IsAudioInput(in)) && format.IsAVOutput(out) {
		return tools.FFmpeg, true
	}

	if format.IsImageInput(in) {
		switch {
		case format.IsHEICFamily(out):
			// FFmpeg has no HEIC/HEIF encoder.
			return tools.ImageMagick, true
		case format.IsXWindow(out):
			return tools.ImageMagick, true
		case format.IsRasterEngineOutput(out):
			return tools.ImageMagick, true
		case format.IsFFmpegImageOutput(out):
			return tools.FFmpeg, true
		}
	}

	if opts.DocumentConversion && format.IsDocumentInput(in) && format.IsDocumentOutput(out) {
		return tools.Pandoc, true
	}

	if format.IsOfficeInput(in) && format.IsOfficeOutput(out) {
		return tools.LibreOffice, true
	}

	return "", false
}
