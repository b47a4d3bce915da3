package tools

import (
	"fmt"
	"runtime"
	"strings"
)

// ID identifies one of the external converter categories ConvertSave
// delegates to. Rename is a pseudo-tool: a plain file copy used when the
// requested conversion differs only in extension spelling.
type ID string

const (
	FFmpeg      ID = "ffmpeg"
	ImageMagick ID = "imagemagick"
	Pandoc      ID = "pandoc"
	LibreOffice ID = "libreoffice"
	Rename      ID = "rename"
)

// All lists every real external tool (Rename excluded).
func All() []ID {
	return []ID{FFmpeg, ImageMagick, Pandoc, LibreOffice}
}

// Parse converts a user-supplied tool name to an ID.
func Parse(name string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ffmpeg":
		return FFmpeg, nil
	case "imagemagick", "magick":
		return ImageMagick, nil
	case "pandoc":
		return Pandoc, nil
	case "libreoffice", "soffice":
		return LibreOffice, nil
	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}

// DisplayName returns the human-facing name for status output.
func (id ID) DisplayName() string {
	switch id {
	case FFmpeg:
		return "FFmpeg"
	case ImageMagick:
		return "ImageMagick"
	case Pandoc:
		return "Pandoc"
	case LibreOffice:
		return "LibreOffice"
	case Rename:
		return "Rename"
	default:
		return string(id)
	}
}

// ExecutableName returns the binary file name for the current platform.
func (id ID) ExecutableName() string {
	return id.executableName(runtime.GOOS)
}

func (id ID) executableName(goos string) string {
	base := map[ID]string{
		FFmpeg:      "ffmpeg",
		ImageMagick: "magick",
		Pandoc:      "pandoc",
		LibreOffice: "soffice",
	}[id]
	if base == "" {
		return ""
	}
	if goos == "windows" {
		return base + ".exe"
	}
	return base
}

// BrewPackage returns the Homebrew package name used on macOS, or "" when
// the tool is not brew-managed.
func (id ID) BrewPackage() string {
	switch id {
	case FFmpeg:
		return "ffmpeg"
	case ImageMagick:
		return "imagemagick"
	case Pandoc:
		return "pandoc"
	default:
		return ""
	}
}

// CacheSubpath returns the path of the executable relative to the tool's
// cache directory. The macOS ImageMagick layout keeps the binary under bin/
// next to the lib/ and etc/ trees it loads at runtime.
func (id ID) CacheSubpath() string {
	return id.cacheSubpath(runtime.GOOS)
}

func (id ID) cacheSubpath(goos string) string {
	if id == ImageMagick && goos == "darwin" {
		return "bin/" + id.executableName(goos)
	}
	return id.executableName(goos)
}

// VersionArgs returns the argument vector that makes the tool print its
// version banner.
func (id ID) VersionArgs() []string {
	switch id {
	case FFmpeg:
		return []string{"-version"}
	case ImageMagick:
		return []string{"-version"}
	case Pandoc:
		return []string{"--version"}
	case LibreOffice:
		return []string{"--version"}
	default:
		return nil
	}
}
