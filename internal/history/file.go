package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the default history file name.
const FileName = Key + ".json"

// FileBackend stores history as a JSON file. Writes go through a temp file
// and rename so a crash never leaves a half-written list.
type FileBackend struct {
	path string
}

// NewFileBackend stores history at path, creating parent directories on first save.
func NewFileBackend(path string) *FileBackend {
	if path == "" {
		path = FileName
	}
	return &FileBackend{path: path}
}

// Path returns the backing file path.
func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) Load(context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	return data, nil
}

func (f *FileBackend) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }
