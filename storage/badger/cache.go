// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/storage"
)

// Cache implements storage.Cache on BadgerDB. Entries are partitioned by
// collection; all entries in a collection share a key prefix so Clear can
// drop the whole collection in one pass.
type Cache struct {
	backend *Backend
}

var _ storage.Cache = (*Cache)(nil)

// NewCache creates a cache over the given backend.
func NewCache(backend *Backend) *Cache {
	return &Cache{backend: backend}
}

// Get returns the batch stored under key. A missing entry is (nil, false, nil).
// A closed or failing backend is reported as storage.ErrCacheUnavailable.
func (c *Cache) Get(ctx context.Context, key core.Fingerprint, collection string) ([]*core.Node, bool, error) {
	if collection == "" {
		collection = storage.DefaultCollection
	}
	if c.backend.IsClosed() {
		return nil, false, fmt.Errorf("%w: %w", storage.ErrCacheUnavailable, storage.ErrStorageClosed)
	}

	var nodes []*core.Node
	found := false

	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCacheKey(collection, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrCacheUnavailable, err)
		}
		return item.Value(func(val []byte) error {
			nodes, err = storage.UnmarshalNodes(val)
			if err != nil {
				return err
			}
			found = true
			return nil
		})
	}, false)

	if err != nil {
		return nil, false, err
	}
	return nodes, found, nil
}

// Put stores the batch under key, overwriting any existing entry.
func (c *Cache) Put(ctx context.Context, key core.Fingerprint, nodes []*core.Node, collection string) error {
	if collection == "" {
		collection = storage.DefaultCollection
	}
	if c.backend.IsClosed() {
		return fmt.Errorf("%w: %w", storage.ErrCacheUnavailable, storage.ErrStorageClosed)
	}

	payload := storage.MarshalNodes(nodes)
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCacheKey(collection, key), payload); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrCacheUnavailable, err)
	}
	return nil
}

// Clear removes every entry in the collection.
func (c *Cache) Clear(ctx context.Context, collection string) error {
	if collection == "" {
		collection = storage.DefaultCollection
	}
	if c.backend.IsClosed() {
		return fmt.Errorf("%w: %w", storage.ErrCacheUnavailable, storage.ErrStorageClosed)
	}
	if err := c.backend.DropPrefix(makeCollectionPrefix(collection)); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrCacheUnavailable, err)
	}
	return nil
}

// Close is a no-op; the backend owns the database lifecycle.
func (c *Cache) Close() error {
	return nil
}
