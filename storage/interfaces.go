package storage

import (
	"context"

	"github.com/poiesic/docpipe/core"
)

// DefaultCollection is the cache collection used when the caller does not
// supply one.
const DefaultCollection = "default"

// Cache is a namespaced key-value store mapping a transformation fingerprint
// to a batch of nodes. Implementations must be safe for concurrent use from
// multiple callers; they provide no ordering or atomicity guarantee across
// concurrent Get/Put for the same key.
type Cache interface {
	// Get returns the batch stored under key in the given collection.
	// A miss is (nil, false, nil), never an error. A backend-connectivity
	// failure is reported as an error wrapping ErrCacheUnavailable.
	// An empty collection means DefaultCollection.
	Get(ctx context.Context, key core.Fingerprint, collection string) ([]*core.Node, bool, error)

	// Put stores the batch under key in the given collection,
	// unconditionally overwriting any existing entry (last-writer-wins).
	Put(ctx context.Context, key core.Fingerprint, nodes []*core.Node, collection string) error

	// Clear removes every entry in the given collection.
	Clear(ctx context.Context, collection string) error

	// Close releases backend resources.
	Close() error
}

// VectorStore receives embedded nodes and serves similarity queries over
// them. Implementations must be thread-safe and support concurrent access.
type VectorStore interface {
	// Add stores the nodes, overwriting existing nodes with the same ID.
	Add(ctx context.Context, nodes ...*core.Node) error

	// Query finds stored nodes similar to the given vector.
	// Returns nodes with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	Query(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// Count returns the number of stored nodes.
	Count(ctx context.Context) (int, error)

	// Close closes the store and releases resources.
	Close() error
}
