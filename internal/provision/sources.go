package provision

import (
	"context"
	"fmt"
	"runtime"

	"convertsave/internal/archive"
	"convertsave/internal/tools"
)

// source describes where a tool's payload lives and how it is packaged.
type source struct {
	url  string
	kind archive.Type
}

const (
	ffmpegWindowsURL = "https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-win64-gpl.zip"
	ffmpegDarwinURL  = "https://evermeet.cx/ffmpeg/getrelease/zip"
	ffmpegLinuxURL   = "https://johnvansickle.com/ffmpeg/releases/ffmpeg-release-amd64-static.tar.xz"
	magickDarwinURL  = "https://imagemagick.org/archive/binaries/ImageMagick-x86_64-apple-darwin20.1.0.tar.gz"
	magickLinuxURL   = "https://imagemagick.org/archive/binaries/magick"
)

func (p *Provisioner) lookupSource(ctx context.Context, id tools.ID) (source, error) {
	return p.lookupSourceFor(ctx, id, runtime.GOOS, runtime.GOARCH)
}

func (p *Provisioner) lookupSourceFor(ctx context.Context, id tools.ID, goos, goarch string) (source, error) {
	switch id {
	case tools.FFmpeg:
		switch goos {
		case "windows":
			return source{url: ffmpegWindowsURL, kind: archive.Zip}, nil
		case "darwin":
			return source{url: ffmpegDarwinURL, kind: archive.Zip}, nil
		default:
			return source{url: ffmpegLinuxURL, kind: archive.TarXz}, nil
		}

	case tools.Pandoc:
		ver, err := p.updates.Latest(ctx, id)
		if err != nil {
			return source{}, err
		}
		base := fmt.Sprintf("https://github.com/jgm/pandoc/releases/download/%s", ver)
		switch goos {
		case "windows":
			return source{
				url:  fmt.Sprintf("%s/pandoc-%s-windows-x86_64.zip", base, ver),
				kind: archive.Zip,
			}, nil
		case "darwin":
			return source{
				url:  fmt.Sprintf("%s/pandoc-%s-%s-macOS.zip", base, ver, pandocDarwinArch(goarch)),
				kind: archive.Zip,
			}, nil
		default:
			return source{
				url:  fmt.Sprintf("%s/pandoc-%s-linux-%s.tar.gz", base, ver, goarch),
				kind: archive.TarGz,
			}, nil
		}

	case tools.ImageMagick:
		switch goos {
		case "windows":
			ver, err := p.updates.Latest(ctx, id)
			if err != nil {
				return source{}, err
			}
			return source{url: p.updates.MagickArchiveURL(ver), kind: archive.SevenZip}, nil
		case "darwin":
			return source{url: magickDarwinURL, kind: archive.TarGz}, nil
		default:
			return source{url: magickLinuxURL, kind: archive.Raw}, nil
		}

	default:
		return source{}, fmt.Errorf("%s: %w", id.DisplayName(), ErrNotProvisionable)
	}
}

func pandocDarwinArch(goarch string) string {
	if goarch == "arm64" {
		return "arm64"
	}
	return "x86_64"
}
