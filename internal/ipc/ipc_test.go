package ipc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"convertsave/internal/daemon"
	"convertsave/internal/testsupport"
	"convertsave/internal/tools"
)

func startServer(t *testing.T) (*Client, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	d, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon: %v", err)
	}
	t.Cleanup(d.Close)

	socket := filepath.Join(t.TempDir(), "convertsave.sock")
	srv, err := NewServer(context.Background(), socket, d, nil)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	client, err := Dial(socket)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, socket
}

func TestStatusRoundTrip(t *testing.T) {
	client, _ := startServer(t)

	status, err := client.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Running || status.PID != os.Getpid() {
		t.Fatalf("status %+v", status)
	}
	if status.SocketPath == "" || status.DataDir == "" || status.HistoryDBPath == "" {
		t.Fatalf("status %+v", status)
	}
}

func TestAvailableFormatsRoundTrip(t *testing.T) {
	client, _ := startServer(t)

	resp, err := client.AvailableFormats("png")
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	found := false
	for _, s := range resp.Suggestions {
		if s.Format == "heic" && s.Tool == string(tools.ImageMagick) {
			found = true
		}
	}
	if !found {
		t.Fatalf("no heic suggestion in %+v", resp.Suggestions)
	}
}

func TestConvertFileRoundTrip(t *testing.T) {
	client, _ := startServer(t)

	input := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(input, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := client.ConvertFile(ConvertRequest{InputPath: input, OutputFormat: "jpeg"})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if filepath.Base(resp.OutputPath) != "photo.jpeg" {
		t.Fatalf("output %q", resp.OutputPath)
	}
	if _, err := os.Stat(resp.OutputPath); err != nil {
		t.Fatalf("output missing: %v", err)
	}

	hist, err := client.RecentConversions(10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist.Entries) != 1 || hist.Entries[0].OutputPath != resp.OutputPath {
		t.Fatalf("history %+v", hist.Entries)
	}
}

func TestConvertFileErrorPropagates(t *testing.T) {
	client, _ := startServer(t)

	input := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := client.ConvertFile(ConvertRequest{InputPath: input, OutputFormat: "png"})
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("err = %v", err)
	}
}

func TestFileInfoRoundTrip(t *testing.T) {
	client, _ := startServer(t)

	path := filepath.Join(t.TempDir(), "Doc.PDF")
	if err := os.WriteFile(path, []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := client.FileInfo(path)
	if err != nil {
		t.Fatalf("file info: %v", err)
	}
	if resp.Info.Name != "Doc.PDF" || resp.Info.Extension != "pdf" || resp.Info.Size != 5 {
		t.Fatalf("info %+v", resp.Info)
	}
}

func TestToolPathOverrideRoundTrip(t *testing.T) {
	client, _ := startServer(t)

	binary := filepath.Join(t.TempDir(), "pandoc")
	if err := os.WriteFile(binary, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := client.SetToolPath("pandoc", binary); err != nil {
		t.Fatalf("set: %v", err)
	}
	status, err := client.ToolsStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got := status.Tools["pandoc"]; !got.Available || got.Path != binary {
		t.Fatalf("pandoc %+v", got)
	}

	if err := client.ClearToolPath("pandoc"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	status, err = client.ToolsStatus()
	if err != nil {
		t.Fatal(err)
	}
	if status.Tools["pandoc"].Available {
		t.Fatal("override survived clear")
	}
}

func TestSetToolPathRejectsUnknownTool(t *testing.T) {
	client, _ := startServer(t)
	if err := client.SetToolPath("photoshop", "/usr/bin/photoshop"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDownloadEventsEmpty(t *testing.T) {
	client, _ := startServer(t)

	resp, err := client.DownloadEvents(0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(resp.Events) != 0 || resp.Cursor != 0 {
		t.Fatalf("resp %+v", resp)
	}
}
