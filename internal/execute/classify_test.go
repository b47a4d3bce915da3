package execute

import (
	"context"
	"runtime"
	"strings"
	"testing"

	"convertsave/internal/tools"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		res    Result
		out    string
		expect string
	}{
		{
			name:   "no stream",
			res:    Result{Stderr: "Output file #0 does not contain any stream", ExitCode: 1},
			out:    "mp3",
			expect: "no required stream",
		},
		{
			name:   "raster only format",
			res:    Result{Stderr: "Unable to choose an output format for 'out.heic'", ExitCode: 1},
			out:    "heic",
			expect: "requires ImageMagick",
		},
		{
			name:   "missing codec",
			res:    Result{Stderr: "Unknown encoder 'libaom-av1'", ExitCode: 1},
			out:    "avif",
			expect: "codec not available",
		},
		{
			name:   "unwritable output",
			res:    Result{Stderr: "Invalid argument\nError opening output file /root/x.png", ExitCode: 1},
			out:    "png",
			expect: "cannot write",
		},
		{
			name:   "missing input",
			res:    Result{Stderr: "in.png: No such file or directory", ExitCode: 1},
			out:    "png",
			expect: "input file not found",
		},
		{
			name:   "raw stderr fallback",
			res:    Result{Stderr: "something exotic went wrong", ExitCode: 1},
			out:    "png",
			expect: "something exotic went wrong",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Classify(tc.res, tools.FFmpeg, tc.out)
			if err == nil || !strings.Contains(err.Error(), tc.expect) {
				t.Fatalf("Classify(%q) = %v, want substring %q", tc.res.Stderr, err, tc.expect)
			}
		})
	}
}

func TestClassifyExitZeroIsSuccess(t *testing.T) {
	// Tools print banners and progress on stderr even when they succeed;
	// only the exit code decides.
	res := Result{
		Stdout:   "frame=  120 fps=0.0 q=-1.0",
		Stderr:   "ffmpeg version 7.1 Copyright (c) 2000-2024",
		ExitCode: 0,
	}
	if err := Classify(res, tools.FFmpeg, "png"); err != nil {
		t.Fatalf("Classify on exit zero = %v, want nil", err)
	}
	if err := Classify(Result{}, tools.ImageMagick, "jpg"); err != nil {
		t.Fatalf("Classify on silent exit zero = %v, want nil", err)
	}
}

func TestClassifyEmptyOutput(t *testing.T) {
	err := Classify(Result{ExitCode: 1}, tools.ImageMagick, "png")
	if err == nil || !strings.Contains(err.Error(), "failed to start") {
		t.Fatalf("unexpected classification: %v", err)
	}
	if runtime.GOOS == "darwin" {
		err = Classify(Result{ExitCode: 9}, tools.ImageMagick, "png")
		if err == nil || !strings.Contains(err.Error(), "killed by macOS") {
			t.Fatalf("unexpected darwin classification: %v", err)
		}
	}
}

func TestCommandRunnerCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	res, err := CommandRunner{}.Run(context.Background(), "/bin/sh", []string{"-c", "echo out; echo err 1>&2; exit 3"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "out" || strings.TrimSpace(res.Stderr) != "err" {
		t.Fatalf("unexpected capture: %+v", res)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", res.ExitCode)
	}
}

func TestCommandRunnerEnvOverride(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	res, err := CommandRunner{}.Run(context.Background(), "/bin/sh", []string{"-c", "printf '%s' \"$MAGICK_HOME\""}, map[string]string{"MAGICK_HOME": "/opt/magick"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stdout != "/opt/magick" {
		t.Fatalf("env not applied: %q", res.Stdout)
	}
}
