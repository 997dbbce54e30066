package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/folioapp/folio/internal/common"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(common.NewSilentLogger(), &common.FileConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return fs
}

func TestFileStore_SetGet(t *testing.T) {
	ctx := context.Background()
	fs := newTestFileStore(t)

	if err := fs.Set(ctx, "price_cache", `{"BTC":{"price":60000}}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := fs.Get(ctx, "price_cache")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != `{"BTC":{"price":60000}}` {
		t.Errorf("Get = %q", got)
	}
}

func TestFileStore_GetMissing(t *testing.T) {
	fs := newTestFileStore(t)
	if _, err := fs.Get(context.Background(), "nope"); err == nil {
		t.Error("Get of missing key succeeded, want error")
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	fs := newTestFileStore(t)

	fs.Set(ctx, "k", "v1")
	fs.Set(ctx, "k", "v2")

	got, err := fs.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "v2" {
		t.Errorf("Get = %q, want v2", got)
	}
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	fs := newTestFileStore(t)

	fs.Set(ctx, "k", "v")
	if err := fs.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := fs.Get(ctx, "k"); err == nil {
		t.Error("Get after Delete succeeded, want error")
	}

	// Deleting a missing key is not an error
	if err := fs.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func TestFileStore_SanitizesKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := NewFileStore(common.NewSilentLogger(), &common.FileConfig{Path: dir})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := fs.Set(ctx, "../escape/attempt", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Nothing may be written outside the kv directory
	entries, err := os.ReadDir(filepath.Join(dir, "kv"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("kv dir has %d entries, want 1", len(entries))
	}
	if _, err := os.Stat(filepath.Join(dir, "escape")); !os.IsNotExist(err) {
		t.Error("key escaped the kv directory")
	}
}

func TestNewKVStore_Factory(t *testing.T) {
	logger := common.NewSilentLogger()

	store, err := NewKVStore(logger, &common.StorageConfig{
		Backend: BackendFile,
		File:    common.FileConfig{Path: t.TempDir()},
	})
	if err != nil {
		t.Fatalf("NewKVStore failed: %v", err)
	}
	if _, ok := store.(*FileStore); !ok {
		t.Errorf("NewKVStore returned %T, want *FileStore", store)
	}

	// Empty backend defaults to file
	store, err = NewKVStore(logger, &common.StorageConfig{File: common.FileConfig{Path: t.TempDir()}})
	if err != nil {
		t.Fatalf("NewKVStore with default backend failed: %v", err)
	}
	if _, ok := store.(*FileStore); !ok {
		t.Errorf("NewKVStore returned %T, want *FileStore", store)
	}

	if _, err := NewKVStore(logger, &common.StorageConfig{Backend: "bogus"}); err == nil {
		t.Error("NewKVStore with unknown backend succeeded, want error")
	}
}
