// Package kv pkg/kv/interfaces.go
package kv

//go:generate mockgen -destination=mock_kv.go -package=kv github.com/statuswatch/statuswatch/pkg/kv KV

import "context"

// KV is the persistence collaborator: a flat key-value store holding
// JSON-encoded documents. Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value for key. The bool reports whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}
