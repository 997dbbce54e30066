// Package storage provides durable key-value persistence with pluggable backends.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/interfaces"
)

// FileStore is a file-backed KVStore: one file per key under basePath/kv.
type FileStore struct {
	basePath string
	logger   *common.Logger
}

// NewFileStore creates a FileStore and ensures the kv directory exists.
func NewFileStore(logger *common.Logger, config *common.FileConfig) (*FileStore, error) {
	fs := &FileStore{
		basePath: config.Path,
		logger:   logger,
	}

	dir := filepath.Join(fs.basePath, "kv")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	logger.Debug().Str("path", config.Path).Msg("FileStore opened")
	return fs, nil
}

// sanitizeKey makes a key safe for use as a filename.
// Replaces /, \, : with _ and collapses ".." to "_" to prevent path traversal.
func (fs *FileStore) sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func (fs *FileStore) filePath(key string) string {
	return filepath.Join(fs.basePath, "kv", fs.sanitizeKey(key)+".json")
}

func (fs *FileStore) Get(ctx context.Context, key string) (string, error) {
	path := fs.filePath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("'%s' not found", key)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// Set writes atomically: temp file in the same directory, then rename.
func (fs *FileStore) Set(ctx context.Context, key, value string) error {
	path := fs.filePath(key)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file for %s: %w", key, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func (fs *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(fs.filePath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete '%s': %w", key, err)
	}
	return nil
}

func (fs *FileStore) Close() error {
	return nil
}

// Compile-time check
var _ interfaces.KVStore = (*FileStore)(nil)
