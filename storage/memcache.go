package storage

import (
	"context"
	"sync"

	"github.com/poiesic/docpipe/core"
)

// MemoryCache is an in-process Cache backed by a map. Entries are stored in
// serialized form so callers cannot mutate cached batches after a Put or
// before a later Get. Useful for tests and short-lived pipelines that do not
// need a durable cache.
type MemoryCache struct {
	mu     sync.RWMutex
	data   map[string]map[string][]byte
	closed bool
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]map[string][]byte),
	}
}

func (c *MemoryCache) Get(ctx context.Context, key core.Fingerprint, collection string) ([]*core.Node, bool, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, false, ErrStorageClosed
	}
	coll, ok := c.data[collection]
	if !ok {
		return nil, false, nil
	}
	payload, ok := coll[string(key)]
	if !ok {
		return nil, false, nil
	}
	nodes, err := UnmarshalNodes(payload)
	if err != nil {
		return nil, false, err
	}
	return nodes, true, nil
}

func (c *MemoryCache) Put(ctx context.Context, key core.Fingerprint, nodes []*core.Node, collection string) error {
	if collection == "" {
		collection = DefaultCollection
	}
	payload := MarshalNodes(nodes)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrStorageClosed
	}
	coll, ok := c.data[collection]
	if !ok {
		coll = make(map[string][]byte)
		c.data[collection] = coll
	}
	coll[string(key)] = payload
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context, collection string) error {
	if collection == "" {
		collection = DefaultCollection
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrStorageClosed
	}
	delete(c.data, collection)
	return nil
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.data = nil
	return nil
}

// Len returns the number of entries in the given collection.
func (c *MemoryCache) Len(collection string) int {
	if collection == "" {
		collection = DefaultCollection
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data[collection])
}
