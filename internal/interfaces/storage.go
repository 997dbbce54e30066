// Package interfaces defines service contracts for Folio
package interfaces

import "context"

// KVStore is a durable key-value store used to persist serialized state
// (the price cache blob, the portfolio value history) under logical keys.
// Implementations: file-backed JSON store, SurrealDB system KV.
type KVStore interface {
	// Get returns the value for a key. Returns ErrKeyNotFound-compatible
	// errors for missing keys; callers treat any error as "absent".
	Get(ctx context.Context, key string) (string, error)

	// Set writes the value for a key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Lifecycle
	Close() error
}
