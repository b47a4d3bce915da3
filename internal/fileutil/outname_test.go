package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUniquePathFree(t *testing.T) {
	dir := t.TempDir()
	got, err := UniquePath(dir, "file", "png")
	if err != nil {
		t.Fatalf("UniquePath: %v", err)
	}
	if got != filepath.Join(dir, "file.png") {
		t.Fatalf("unexpected path: %s", got)
	}
}

func TestUniquePathCollisions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "file.png"), nil, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := UniquePath(dir, "file", "png")
	if err != nil {
		t.Fatalf("UniquePath: %v", err)
	}
	if got != filepath.Join(dir, "file (1).png") {
		t.Fatalf("first collision: %s", got)
	}

	if err := os.WriteFile(got, nil, 0o644); err != nil {
		t.Fatalf("seed second: %v", err)
	}
	got, err = UniquePath(dir, "file", "png")
	if err != nil {
		t.Fatalf("UniquePath: %v", err)
	}
	if got != filepath.Join(dir, "file (2).png") {
		t.Fatalf("second collision: %s", got)
	}

	if _, err := os.Lstat(got); err == nil {
		t.Fatalf("allocator returned an existing path: %s", got)
	}
}
