package history

import (
	"context"
	"testing"

	"convertsave/internal/testsupport"
	"convertsave/internal/tools"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	inputs := []struct {
		in, out string
		tool    tools.ID
	}{
		{"/in/a.mp4", "/out/a.mp3", tools.FFmpeg},
		{"/in/b.png", "/out/b.heic", tools.ImageMagick},
		{"/in/c.md", "/out/c.pdf", tools.Pandoc},
	}
	for _, rec := range inputs {
		id, err := store.Record(ctx, rec.in, rec.out, rec.tool)
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		if id == "" {
			t.Fatal("empty id")
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Most recent first.
	if entries[0].InputPath != "/in/c.md" || entries[0].Tool != tools.Pandoc {
		t.Fatalf("unexpected newest entry: %+v", entries[0])
	}
	if entries[0].CreatedAt.Before(entries[1].CreatedAt) {
		t.Fatal("entries out of order")
	}
}

func TestRecentOnEmptyStore(t *testing.T) {
	store := openTestStore(t)
	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Record(ctx, "/in/a.gif", "/out/a.png", tools.FFmpeg); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatal("clear left entries behind")
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.Record(context.Background(), "/in/a.wav", "/out/a.flac", tools.FFmpeg); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	entries, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries after reopen", len(entries))
	}
}
