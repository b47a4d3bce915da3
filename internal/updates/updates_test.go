package updates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"convertsave/internal/tools"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(nil,
		WithAPIBase(srv.URL),
		WithMagickIndexURL(srv.URL+"/archive/binaries/"))
	return c, srv
}

func TestLatestPandocRelease(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/jgm/pandoc/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name": "3.6.3", "name": "pandoc 3.6.3"}`))
	})
	c, _ := newTestClient(t, mux)

	got, err := c.Latest(context.Background(), tools.Pandoc)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got != "3.6.3" {
		t.Fatalf("got %q, want 3.6.3", got)
	}
}

func TestLatestFFmpegSkipsNonAutobuildTags(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/BtbN/FFmpeg-Builds/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"name": "latest"},
			{"name": "autobuild-2025-06-01-12-50"},
			{"name": "autobuild-2025-07-15-13-01"},
			{"name": "autobuild-2024-12-31-23-59"}
		]`))
	})
	c, _ := newTestClient(t, mux)

	got, err := c.Latest(context.Background(), tools.FFmpeg)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got != "autobuild-2025-07-15-13-01" {
		t.Fatalf("got %q", got)
	}
}

func TestLatestFFmpegNoAutobuilds(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/BtbN/FFmpeg-Builds/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name": "latest"}]`))
	})
	c, _ := newTestClient(t, mux)

	if _, err := c.Latest(context.Background(), tools.FFmpeg); err == nil {
		t.Fatal("expected error when no autobuild tags exist")
	}
}

func TestLatestMagickArchive(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/archive/binaries/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><pre>
<a href="ImageMagick-7.1.1-43-portable-Q16-HDRI-x64.7z">ImageMagick-7.1.1-43-portable-Q16-HDRI-x64.7z</a>
<a href="ImageMagick-7.1.1-43-portable-Q16-x64.7z">ImageMagick-7.1.1-43-portable-Q16-x64.7z</a>
<a href="ImageMagick-7.1.2-5-portable-Q16-HDRI-x64.7z">ImageMagick-7.1.2-5-portable-Q16-HDRI-x64.7z</a>
<a href="ImageMagick-7.1.1-43-portable-Q16-HDRI-arm64.7z">arm build</a>
</pre></body></html>`))
	})
	c, _ := newTestClient(t, mux)

	got, err := c.Latest(context.Background(), tools.ImageMagick)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got != "7.1.2-5" {
		t.Fatalf("got %q, want 7.1.2-5", got)
	}
	wantURL := c.indexURL + "ImageMagick-7.1.2-5-portable-Q16-HDRI-x64.7z"
	if c.MagickArchiveURL(got) != wantURL {
		t.Fatalf("archive URL %q, want %q", c.MagickArchiveURL(got), wantURL)
	}
}

func TestLatestRejectsHTTPError(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())
	if _, err := c.Latest(context.Background(), tools.Pandoc); err == nil {
		t.Fatal("expected error on HTTP 404")
	}
}

func TestLatestUnsupportedTool(t *testing.T) {
	c := New(nil)
	if _, err := c.Latest(context.Background(), tools.Rename); err == nil {
		t.Fatal("expected error for tool without a feed")
	}
}

func TestUpdateAvailable(t *testing.T) {
	cases := []struct {
		current, latest string
		want            bool
	}{
		{"3.6.2", "3.6.3", true},
		{"3.6.3", "3.6.3", false},
		{"3.7.0", "3.6.3", false},
		{"7.1.1-43", "7.1.2-5", true},
		{"autobuild-2025-06-01-12-50", "autobuild-2025-07-15-13-01", true},
		{"autobuild-2025-07-15-13-01", "autobuild-2025-07-15-13-01", false},
		{"", "3.6.3", true},
		{"3.6.3", "", false},
	}
	for _, tc := range cases {
		if got := UpdateAvailable(tc.current, tc.latest); got != tc.want {
			t.Errorf("UpdateAvailable(%q, %q) = %v, want %v", tc.current, tc.latest, got, tc.want)
		}
	}
}

func TestCheckReportsPerTool(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/jgm/pandoc/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name": "3.6.3"}`))
	})
	mux.HandleFunc("/repos/BtbN/FFmpeg-Builds/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name": "autobuild-2025-07-15-13-01"}]`))
	})
	mux.HandleFunc("/archive/binaries/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="ImageMagick-7.1.2-5-portable-Q16-HDRI-x64.7z">x</a>`))
	})
	c, _ := newTestClient(t, mux)

	got := c.Check(context.Background(), map[tools.ID]string{
		tools.Pandoc: "3.6.2",
		tools.FFmpeg: "autobuild-2025-07-15-13-01",
	})

	pandoc := got["pandoc"]
	if !pandoc.Installed || !pandoc.UpdateAvailable || pandoc.LatestVersion != "3.6.3" {
		t.Fatalf("pandoc: %+v", pandoc)
	}
	ffmpeg := got["ffmpeg"]
	if !ffmpeg.Installed || ffmpeg.UpdateAvailable {
		t.Fatalf("ffmpeg: %+v", ffmpeg)
	}
	magick := got["imagemagick"]
	if magick.Installed || magick.UpdateAvailable || magick.LatestVersion != "7.1.2-5" {
		t.Fatalf("imagemagick: %+v", magick)
	}
}
