// Package storage provides durable key-value persistence with pluggable backends.
package storage

import (
	"fmt"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/interfaces"
	"github.com/folioapp/folio/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendFile    = "file"
	BackendSurreal = "surrealdb"
)

// NewKVStore creates a KV store based on the configuration.
// Supported backends: "file" (default), "surrealdb".
func NewKVStore(logger *common.Logger, config *common.StorageConfig) (interfaces.KVStore, error) {
	backend := config.Backend
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendFile:
		return NewFileStore(logger, &config.File)

	case BackendSurreal:
		return surrealdb.NewStore(logger, &config.Surreal)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: file, surrealdb)", backend)
	}
}
