package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Source is the backing resource a Store loads its collection from.
type Source interface {
	Name() string
	Exists(ctx context.Context) (bool, error)
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, raw []byte) error
}

type fileSource struct {
	path string
}

func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

func (f *fileSource) Name() string {
	return "file:" + f.path
}

func (f *fileSource) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (f *fileSource) Read(ctx context.Context) ([]byte, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file %s: %w", f.path, ErrSourceMissing)
	}
	return raw, err
}

// Write replaces the file atomically so a concurrent Read sees either nothing
// or the whole document.
func (f *fileSource) Write(ctx context.Context, raw []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}
