package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// maxSuffixAttempts bounds the numeric collision suffix before falling back
// to a timestamped name.
const maxSuffixAttempts = 10000

// UniquePath produces a destination path under dir that does not exist at
// call time. The first candidate is {stem}.{ext}; collisions append
// " (1)", " (2)", … to the stem. ext is used without a leading dot.
func UniquePath(dir, stem, ext string) (string, error) {
	candidate := filepath.Join(dir, fmt.Sprintf("%s.%s", stem, ext))
	free, err := pathFree(candidate)
	if err != nil {
		return "", err
	}
	if free {
		return candidate, nil
	}

	for i := 1; i <= maxSuffixAttempts; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d).%s", stem, i, ext))
		free, err := pathFree(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}

	return filepath.Join(dir, fmt.Sprintf("%s (%d).%s", stem, time.Now().Unix(), ext)), nil
}

func pathFree(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	return false, fmt.Errorf("inspect output candidate %q: %w", path, err)
}
