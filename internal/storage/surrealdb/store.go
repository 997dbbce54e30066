// Package surrealdb implements the KVStore contract on SurrealDB.
package surrealdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/interfaces"
)

// kvRecord is the stored row shape in the system_kv table.
type kvRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store is a SurrealDB-backed KVStore using a single system_kv table.
type Store struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewStore connects to SurrealDB, signs in, selects the namespace/database,
// and ensures the system_kv table exists.
func NewStore(logger *common.Logger, config *common.SurrealConfig) (*Store, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	// SurrealDB v3 errors on querying non-existent tables
	if _, err := surrealdb.Query[any](ctx, db, "DEFINE TABLE IF NOT EXISTS system_kv SCHEMALESS", nil); err != nil {
		return nil, fmt.Errorf("failed to define system_kv table: %w", err)
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB store initialized")

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	kv, err := surrealdb.Select[kvRecord](ctx, s.db, surrealmodels.NewRecordID("system_kv", key))
	if err != nil || kv == nil {
		return "", errors.New("system KV not found")
	}
	return kv.Value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	kv := kvRecord{Key: key, Value: value}

	sql := "UPSERT type::record('system_kv', $id) CONTENT $kv"
	vars := map[string]any{"id": key, "kv": kv}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]kvRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to set system KV after retries: %w", err)
		}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := surrealdb.Delete[kvRecord](ctx, s.db, surrealmodels.NewRecordID("system_kv", key))
	if err != nil {
		return fmt.Errorf("failed to delete system KV: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

// Compile-time check
var _ interfaces.KVStore = (*Store)(nil)
