package format

import "strings"

// Class buckets an extension into one of the supported media families.
type Class int

const (
	ClassUnknown Class = iota
	ClassVideo
	ClassAudio
	ClassImage
	ClassDocument
	ClassOffice
)

// String returns the lowercase class label used in logs and suggestions.
func (c Class) String() string {
	switch c {
	case ClassVideo:
		return "video"
	case ClassAudio:
		return "audio"
	case ClassImage:
		return "image"
	case ClassDocument:
		return "document"
	case ClassOffice:
		return "office"
	default:
		return "unknown"
	}
}

// Normalize lowercases an extension and strips a single leading dot.
// It is idempotent.
func Normalize(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	return strings.TrimPrefix(ext, ".")
}

func set(exts ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}

func union(sets ...map[string]struct{}) map[string]struct{} {
	m := make(map[string]struct{})
	for _, s := range sets {
		for e := range s {
			m[e] = struct{}{}
		}
	}
	return m
}

// The capability sets are fixed, compile-time data. Nothing here is probed
// from the installed tools at runtime.
var (
	videoInputs = set(
		"mp4", "mov", "avi", "mkv", "webm", "flv", "wmv", "m4v",
		"mpg", "mpeg", "3gp", "ogv", "ts", "mts", "m2ts", "vob",
	)

	audioInputs = set(
		"mp3", "wav", "flac", "aac", "ogg", "oga", "m4a", "wma",
		"opus", "aiff", "aif", "amr", "ac3", "dts", "mka",
	)

	// avOutputs covers video containers, common audio codecs, and gif.
	avOutputs = set(
		"mp4", "mov", "avi", "mkv", "webm", "flv", "wmv", "m4v",
		"mpg", "mpeg", "3gp", "ogv",
		"mp3", "wav", "flac", "aac", "ogg", "m4a", "wma", "opus", "aiff",
		"gif",
	)

	standardRaster = set("jpg", "jpeg", "png", "gif", "bmp", "tiff", "tif", "webp")
	modernRaster   = set("heic", "heif", "avif", "jxl")
	professional   = set("tga", "exr", "hdr", "dpx", "psd", "psb", "miff", "mpc", "pict", "pct")
	jpeg2000       = set("j2k", "jp2", "jpc", "jpf", "jpx", "jpm", "mj2")
	legacyRaster   = set("pcx", "ico", "sgi", "ras", "sun", "tim", "pix", "cin")
	pnmFamily      = set("pbm", "pgm", "ppm", "pnm", "pfm", "pam")
	xwindow        = set("xbm", "xpm", "xwd")
	gaming         = set("dds", "vtf")
	vector         = set("svg", "svgz", "eps", "ps", "ai", "pdf")
	cameraRaw      = set(
		"arw", "cr2", "cr3", "crw", "dng", "nef", "nrw", "orf",
		"raf", "rw2", "pef", "srw", "x3f", "erf", "mrw", "dcr", "kdc", "3fr",
	)
	animation = set("mng", "apng")
	windows   = set("cur", "dib", "emf", "wmf")
	misc      = set("fits", "fts", "jbig", "jbg", "xcf", "otb", "palm", "picon", "pwp", "rgf", "wbmp")

	imageInputs = union(
		standardRaster, modernRaster, professional, jpeg2000, legacyRaster,
		pnmFamily, xwindow, gaming, vector, cameraRaw, animation, windows, misc,
	)

	// rasterEngineOutputs enumerates what ImageMagick can encode for us.
	rasterEngineOutputs = union(
		standardRaster, modernRaster, jpeg2000, pnmFamily, xwindow,
		set(
			"tga", "exr", "hdr", "dpx", "psd", "miff",
			"pcx", "ico", "sgi", "ras",
			"dds", "pdf", "wbmp", "fits", "palm",
		),
	)

	// ffmpegImageOutputs is the fallback set when ImageMagick is not routed.
	ffmpegImageOutputs = set(
		"jpg", "jpeg", "png", "bmp", "tiff", "tif", "webp", "gif", "avif", "ico",
		"pbm", "pgm", "ppm", "hdr", "exr", "dpx", "tga", "sgi", "jp2", "mjpeg",
	)

	documentInputs  = set("md", "markdown", "html", "htm", "tex", "rst", "org", "textile", "docx", "odt", "epub", "rtf", "txt")
	documentOutputs = set("md", "markdown", "html", "pdf", "docx", "odt", "epub", "rtf", "txt", "tex", "rst", "plain")

	officeInputs  = set("doc", "docx", "xls", "xlsx", "ppt", "pptx", "odt", "ods", "odp", "rtf", "csv")
	officeOutputs = set("pdf", "docx", "odt", "xlsx", "ods", "pptx", "odp", "rtf", "csv", "html", "txt")

	// animatedInputs are container formats that may carry multiple frames.
	animatedInputs = set("gif", "webp", "apng", "mng")

	// noAlphaOutputs cannot represent an alpha channel; transparent inputs
	// must be flattened before encoding to one of these.
	noAlphaOutputs = set(
		"jpg", "jpeg", "bmp", "gif",
		"j2k", "jp2", "jpc", "jpf", "jpx", "jpm",
		"hdr", "pbm", "pgm", "ppm",
	)

	videoToImageOutputs = set("jpg", "jpeg", "png", "webp", "bmp", "tiff", "tif", "ico")
)

// ClassOf classifies a normalized extension. Video wins over image for
// extensions that appear in both sets (there are none today), and office
// formats that double as document inputs report ClassOffice.
func ClassOf(ext string) Class {
	ext = Normalize(ext)
	switch {
	case has(videoInputs, ext):
		return ClassVideo
	case has(audioInputs, ext):
		return ClassAudio
	case has(imageInputs, ext):
		return ClassImage
	case has(officeInputs, ext):
		return ClassOffice
	case has(documentInputs, ext):
		return ClassDocument
	default:
		return ClassUnknown
	}
}

func has(m map[string]struct{}, ext string) bool {
	_, ok := m[ext]
	return ok
}

// IsVideoInput reports whether ext is a recognized video container.
func IsVideoInput(ext string) bool { return has(videoInputs, Normalize(ext)) }

// IsAudioInput reports whether ext is a recognized audio format.
func IsAudioInput(ext string) bool { return has(audioInputs, Normalize(ext)) }

// IsImageInput reports whether ext is in the image input union.
func IsImageInput(ext string) bool { return has(imageInputs, Normalize(ext)) }

// IsAVOutput reports whether ext is a valid FFmpeg audio/video target.
func IsAVOutput(ext string) bool { return has(avOutputs, Normalize(ext)) }

// IsRasterEngineOutput reports whether ImageMagick can encode ext.
func IsRasterEngineOutput(ext string) bool { return has(rasterEngineOutputs, Normalize(ext)) }

// IsFFmpegImageOutput reports whether FFmpeg can encode ext as an image.
func IsFFmpegImageOutput(ext string) bool { return has(ffmpegImageOutputs, Normalize(ext)) }

// IsDocumentInput reports whether Pandoc accepts ext as input.
func IsDocumentInput(ext string) bool { return has(documentInputs, Normalize(ext)) }

// IsDocumentOutput reports whether Pandoc can produce ext.
func IsDocumentOutput(ext string) bool { return has(documentOutputs, Normalize(ext)) }

// IsOfficeInput reports whether LibreOffice accepts ext as input.
func IsOfficeInput(ext string) bool { return has(officeInputs, Normalize(ext)) }

// IsOfficeOutput reports whether LibreOffice can produce ext.
func IsOfficeOutput(ext string) bool { return has(officeOutputs, Normalize(ext)) }

// IsAnimated reports whether ext is a multi-frame container format.
func IsAnimated(ext string) bool { return has(animatedInputs, Normalize(ext)) }

// SupportsAlpha reports whether the output format can carry an alpha channel.
func SupportsAlpha(ext string) bool { return !has(noAlphaOutputs, Normalize(ext)) }

// IsXWindow reports whether ext is one of the X Window System formats only
// ImageMagick can encode.
func IsXWindow(ext string) bool { return has(xwindow, Normalize(ext)) }

// IsHEICFamily reports whether ext is HEIC/HEIF, which FFmpeg
// cannot encode.
func IsHEICFamily(ext string) bool {
	ext = Normalize(ext)
	return ext == "heic" || ext == "heif"
}

// IsVideoToImageOutput reports whether ext is a valid still-frame target for
// a video input.
func IsVideoToImageOutput(ext string) bool { return has(videoToImageOutputs, Normalize(ext)) }

// RasterEngineOutputs returns the sorted ImageMagick output set.
func RasterEngineOutputs() []string { return sorted(rasterEngineOutputs) }

// AVOutputs returns the sorted FFmpeg audio/video output set.
func AVOutputs() []string { return sorted(avOutputs) }

// FFmpegImageOutputs returns the sorted FFmpeg image output set.
func FFmpegImageOutputs() []string { return sorted(ffmpegImageOutputs) }

// DocumentOutputs returns the sorted Pandoc output set.
func DocumentOutputs() []string { return sorted(documentOutputs) }

// OfficeOutputs returns the sorted LibreOffice output set.
func OfficeOutputs() []string { return sorted(officeOutputs) }
