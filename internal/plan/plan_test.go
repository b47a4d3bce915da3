package plan

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"convertsave/internal/execute"
	"convertsave/internal/testsupport"
	"convertsave/internal/tools"
)

func TestRenamePlan(t *testing.T) {
	p := New(testsupport.NewFakeRunner())
	got, err := p.Build(context.Background(), tools.Rename, "", "/in/a.jpg", "/out/a.jpeg", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !got.Copy || got.Command != nil || got.HEIC != nil {
		t.Fatalf("expected copy plan, got %+v", got)
	}
}

func TestMagickFlattenOrdering(t *testing.T) {
	runner := testsupport.NewFakeRunner()
	runner.Script("%[channels]", execute.Result{Stdout: "srgba"}, nil)

	p := New(runner)
	got, err := p.Build(context.Background(), tools.ImageMagick, "/usr/bin/magick", "/in/pic.png", "/out/pic.jpg", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	testsupport.ArgsContainInOrder(t, got.Command.Args,
		"/in/pic.png", "-background", "white", "-flatten", "-quality", "90", "/out/pic.jpg")
}

func TestMagickNoFlattenWithoutAlpha(t *testing.T) {
	runner := testsupport.NewFakeRunner()
	runner.Script("%[channels]", execute.Result{Stdout: "srgb"}, nil)

	p := New(runner)
	got, err := p.Build(context.Background(), tools.ImageMagick, "/usr/bin/magick", "/in/pic.png", "/out/pic.jpg", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, arg := range got.Command.Args {
		if arg == "-flatten" {
			t.Fatalf("unexpected flatten for opaque input: %v", got.Command.Args)
		}
	}
}

func TestChannelsHaveAlpha(t *testing.T) {
	cases := []struct {
		channels string
		want     bool
	}{
		{"srgba", true},
		{"rgba", true},
		{"graya", true},
		{"cmyka", true},
		{"alpha", true},
		{"matte", true},
		{"red, green, blue, alpha", true},
		{"srgb", false},
		{"gray", false},
		{"cmyk", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := channelsHaveAlpha(tc.channels); got != tc.want {
			t.Errorf("channelsHaveAlpha(%q) = %v, want %v", tc.channels, got, tc.want)
		}
	}
}

func TestMagickNoFlattenForGrayscale(t *testing.T) {
	runner := testsupport.NewFakeRunner()
	runner.Script("%[channels]", execute.Result{Stdout: "gray"}, nil)

	p := New(runner)
	got, err := p.Build(context.Background(), tools.ImageMagick, "/usr/bin/magick", "/in/scan.png", "/out/scan.jpg", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, arg := range got.Command.Args {
		if arg == "-flatten" {
			t.Fatalf("unexpected flatten for grayscale input: %v", got.Command.Args)
		}
	}
}

func TestMagickAnimatedFrameSelector(t *testing.T) {
	p := New(testsupport.NewFakeRunner())
	got, err := p.Build(context.Background(), tools.ImageMagick, "/usr/bin/magick", "/in/anim.gif", "/out/still.png", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got.Command.Args[0] != "/in/anim.gif[0]" {
		t.Fatalf("expected frame selector, got %q", got.Command.Args[0])
	}
}

func TestMagickOutputFlags(t *testing.T) {
	cases := []struct {
		out  string
		want []string
	}{
		{"ico", []string{"-resize", "256x256", "-gravity", "center", "-extent", "256x256", "-background", "transparent"}},
		{"heic", []string{"-quality", "85"}},
		{"jxl", []string{"-quality", "90"}},
		{"webp", []string{"-quality", "90"}},
		{"jp2", []string{"-quality", "85"}},
		{"tiff", []string{"-quality", "100"}},
		{"pdf", []string{"-compress", "jpeg", "-density", "300"}},
		{"svg", []string{"-density", "300"}},
		{"png", nil},
	}
	for _, tc := range cases {
		got := magickOutputFlags(tc.out)
		if strings.Join(got, " ") != strings.Join(tc.want, " ") {
			t.Fatalf("magickOutputFlags(%q) = %v, want %v", tc.out, got, tc.want)
		}
	}
}

func TestMagickExtraOptionsAppended(t *testing.T) {
	p := New(testsupport.NewFakeRunner())
	got, err := p.Build(context.Background(), tools.ImageMagick, "/usr/bin/magick", "/in/a.png", "/out/a.webp", "-quality 70 -strip")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	testsupport.ArgsContainInOrder(t, got.Command.Args, "-quality", "90", "-quality", "70", "-strip", "/out/a.webp")
}

func TestFFmpegBasicVideo(t *testing.T) {
	p := New(testsupport.NewFakeRunner())
	got, err := p.Build(context.Background(), tools.FFmpeg, "/usr/bin/ffmpeg", "/in/v.mkv", "/out/v.mp4", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	testsupport.ArgsContainInOrder(t, got.Command.Args,
		"-i", "/in/v.mkv", "-pix_fmt", "yuv420p", "-profile:v", "main", "-movflags", "+faststart", "-y", "/out/v.mp4")
}

func TestFFmpegVideoToStill(t *testing.T) {
	p := New(testsupport.NewFakeRunner())
	got, err := p.Build(context.Background(), tools.FFmpeg, "/usr/bin/ffmpeg", "/in/v.mp4", "/out/frame.png", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	testsupport.ArgsContainInOrder(t, got.Command.Args, "-frames:v", "1", "-update", "1", "-y", "/out/frame.png")
}

func TestFFmpegFlattenFilter(t *testing.T) {
	runner := testsupport.NewFakeRunner()
	runner.Script("-hide_banner", execute.Result{Stderr: "Stream #0:0: Video: png, rgba(pc)"}, nil)

	p := New(runner)
	got, err := p.Build(context.Background(), tools.FFmpeg, "/usr/bin/ffmpeg", "/in/pic.png", "/out/pic.ppm", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	joined := strings.Join(got.Command.Args, " ")
	if !strings.Contains(joined, "-f lavfi -i color=c=white") {
		t.Fatalf("missing synthetic background input: %s", joined)
	}
	if !strings.Contains(joined, "overlay=shortest=1,format=rgb24") {
		t.Fatalf("missing rgb24 coercion for ppm: %s", joined)
	}
	testsupport.ArgsContainInOrder(t, got.Command.Args, "-q:v", "1")
}

func TestFFmpegAVIF(t *testing.T) {
	runner := testsupport.NewFakeRunner()
	runner.Script("-hide_banner", execute.Result{Stderr: "Video: png, rgba"}, nil)

	p := New(runner)
	got, err := p.Build(context.Background(), tools.FFmpeg, "/usr/bin/ffmpeg", "/in/pic.png", "/out/pic.avif", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	testsupport.ArgsContainInOrder(t, got.Command.Args,
		"-map", "0:v", "-map", "0:v", "-filter:v:1", "alphaextract",
		"-c:v", "libaom-av1", "-still-picture", "1", "-cpu-used", "6",
		"-crf", "28", "-b:v", "0", "-row-mt", "1", "-frames:v", "1")
}

func TestFFmpegICOScale(t *testing.T) {
	p := New(testsupport.NewFakeRunner())
	got, err := p.Build(context.Background(), tools.FFmpeg, "/usr/bin/ffmpeg", "/in/pic.bmp", "/out/icon.ico", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	joined := strings.Join(got.Command.Args, " ")
	if !strings.Contains(joined, "force_original_aspect_ratio=decrease") {
		t.Fatalf("missing ico scale filter: %s", joined)
	}
}

func TestFFmpegHEICInputBecomesPipeline(t *testing.T) {
	p := New(testsupport.NewFakeRunner())
	got, err := p.Build(context.Background(), tools.FFmpeg, "/usr/bin/ffmpeg", "/in/photo.heic", "/out/photo.jpg", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got.HEIC == nil || got.Command != nil {
		t.Fatalf("expected HEIC pipeline, got %+v", got)
	}
}

func TestPandocPlan(t *testing.T) {
	p := New(testsupport.NewFakeRunner())
	got, err := p.Build(context.Background(), tools.Pandoc, "/usr/bin/pandoc", "/in/doc.md", "/out/doc.html", "--standalone")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	testsupport.ArgsContainInOrder(t, got.Command.Args, "/in/doc.md", "-o", "/out/doc.html", "--standalone")
}

func TestSofficePostRename(t *testing.T) {
	p := New(testsupport.NewFakeRunner())
	got, err := p.Build(context.Background(), tools.LibreOffice, "/usr/bin/soffice", "/in/report.docx", "/out/report (1).pdf", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	testsupport.ArgsContainInOrder(t, got.Command.Args, "--headless", "--convert-to", "pdf", "--outdir", "/out", "/in/report.docx")
	if got.PostRename != filepath.Join("/out", "report.pdf") {
		t.Fatalf("unexpected post-rename source: %q", got.PostRename)
	}
}
