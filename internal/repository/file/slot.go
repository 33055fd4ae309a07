package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/Rrens/chat-widget/internal/domain"
)

var unsafeKey = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SlotRepository stores each slot as a JSON file in a directory
type SlotRepository struct {
	dir string
}

// NewSlotRepository creates dir if needed
func NewSlotRepository(dir string) (*SlotRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &SlotRepository{dir: dir}, nil
}

func (r *SlotRepository) path(key string) string {
	return filepath.Join(r.dir, unsafeKey.ReplaceAllString(key, "_")+".json")
}

func (r *SlotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(r.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrSlotEmpty
		}
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}
	return data, nil
}

// Save replaces the slot file atomically
func (r *SlotRepository) Save(ctx context.Context, key string, data []byte) error {
	return atomicWriteFile(r.path(key), data, 0o644)
}

// Ping checks that the directory is still there
func (r *SlotRepository) Ping(ctx context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("storage dir unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", r.dir)
	}
	return nil
}

func (r *SlotRepository) Close() error { return nil }

// atomicWriteFile writes to a temp file in the same directory, syncs it and
// renames it over path, so readers see either the old or the new content.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
