package repository

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalArchive stores rendered reports as UTF-8 text files under a root
// directory, creating year directories as needed.
type LocalArchive struct {
	root string
}

// NewLocalArchive creates a local archive rooted at dir.
func NewLocalArchive(dir string) *LocalArchive {
	return &LocalArchive{root: dir}
}

func (a *LocalArchive) Store(ctx context.Context, path, content string) error {
	full := filepath.Join(a.root, filepath.FromSlash(path))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

func (a *LocalArchive) Load(ctx context.Context, path string) (string, error) {
	full := filepath.Join(a.root, filepath.FromSlash(path))

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return "", fmt.Errorf("reading report %s: %w", path, err)
	}
	return string(data), nil
}

func (a *LocalArchive) List(ctx context.Context, prefix string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(a.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == a.root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(a.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return paths, nil
}

func (a *LocalArchive) Close() error {
	return nil
}
