package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CommitFile moves a finished temp file to finalPath and returns where it
// ended up:
//   - finalPath is free: rename.
//   - finalPath holds a file of the same size: it is the same image, replace it.
//   - otherwise keep the existing file and use the next free numeric suffix.
func CommitFile(tempPath, finalPath string) (string, error) {
	existing, err := os.Stat(finalPath)
	if os.IsNotExist(err) {
		return finalPath, rename(tempPath, finalPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", finalPath, err)
	}

	fresh, err := os.Stat(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat temp file: %w", err)
	}

	if existing.Size() == fresh.Size() {
		if err := os.Remove(finalPath); err != nil {
			return "", fmt.Errorf("failed to replace %s: %w", finalPath, err)
		}
		return finalPath, rename(tempPath, finalPath)
	}

	alt, err := NextFreeName(finalPath)
	if err != nil {
		return "", err
	}
	return alt, rename(tempPath, alt)
}

func rename(from, to string) error {
	if err := os.Rename(from, to); err != nil {
		os.Remove(from)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// NextFreeName returns <prefix>-<max+1>.<ext> where prefix is the name of
// path without its trailing -NN and max is the highest suffix on disk for
// that prefix and extension.
func NextFreeName(path string) (string, error) {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	prefix, max := stem, 0
	if i := strings.LastIndex(stem, "-"); i >= 0 {
		if n, err := strconv.Atoi(stem[i+1:]); err == nil {
			prefix, max = stem[:i], n
		}
	}

	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		rest, ok := strings.CutPrefix(strings.TrimSuffix(name, ext), prefix+"-")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > max {
			max = n
		}
	}

	return filepath.Join(dir, fmt.Sprintf("%s-%02d%s", prefix, max+1, ext)), nil
}
