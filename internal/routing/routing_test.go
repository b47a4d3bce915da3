package routing

import (
	"testing"

	"convertsave/internal/format"
	"convertsave/internal/tools"
)

func TestRoutePolicy(t *testing.T) {
	cases := []struct {
		in, out string
		want    tools.ID
		ok      bool
	}{
		{"jpg", "jpeg", tools.Rename, true},
		{"jpeg", "jpg", tools.Rename, true},
		{"mp4", "mp3", tools.FFmpeg, true},
		{"MP4", "MP3", tools.FFmpeg, true},
		{"mkv", "webm", tools.FFmpeg, true},
		{"flac", "mp3", tools.FFmpeg, true},
		{"mp4", "gif", tools.FFmpeg, true},
		{"png", "heic", tools.ImageMagick, true},
		{"png", "heif", tools.ImageMagick, true},
		{"png", "xbm", tools.ImageMagick, true},
		{"tiff", "xpm", tools.ImageMagick, true},
		{"bmp", "xwd", tools.ImageMagick, true},
		{"png", "jpg", tools.ImageMagick, true},
		{"cr2", "png", tools.ImageMagick, true},
		{"heic", "jpg", tools.ImageMagick, true},
		{".png", ".webp", tools.ImageMagick, true},
		{"docx", "pdf", tools.LibreOffice, true},
		{"xlsx", "csv", tools.LibreOffice, true},
		{"mp3", "png", "", false},
		{"", "mp4", "", false},
		{"mp4", "", "", false},
		{"zzz", "qqq", "", false},
	}
	for _, tc := range cases {
		got, ok := Route(tc.in, tc.out, Options{})
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Route(%q, %q) = (%q, %v), want (%q, %v)", tc.in, tc.out, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRouteAVMatrix(t *testing.T) {
	for _, in := range []string{"mp4", "mov", "mkv", "mp3", "wav", "flac", "opus"} {
		for _, out := range format.AVOutputs() {
			got, ok := Route(in, out, Options{})
			if !ok || got != tools.FFmpeg {
				t.Fatalf("Route(%q, %q) = (%q, %v), want ffmpeg", in, out, got, ok)
			}
		}
	}
}

func TestRouteRasterOnlyOutputs(t *testing.T) {
	for _, out := range []string{"heic", "heif", "xbm", "xpm", "xwd"} {
		for _, in := range []string{"png", "jpg", "webp", "tga", "dds", "arw"} {
			got, ok := Route(in, out, Options{})
			if !ok || got != tools.ImageMagick {
				t.Fatalf("Route(%q, %q) = (%q, %v), want imagemagick", in, out, got, ok)
			}
		}
	}
}

func TestRouteDocumentGate(t *testing.T) {
	if _, ok := Route("md", "html", Options{}); ok {
		t.Fatal("document conversion should be disabled by default")
	}
	got, ok := Route("md", "html", Options{DocumentConversion: true})
	if !ok || got != tools.Pandoc {
		t.Fatalf("Route(md, html) with document conversion = (%q, %v), want pandoc", got, ok)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, ext := range []string{".PNG", "png", "", ".tar.gz", "JpEg"} {
		once := format.Normalize(ext)
		if twice := format.Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", ext, once, twice)
		}
	}
}
