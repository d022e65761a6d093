package badger

import (
	"fmt"

	"github.com/poiesic/docpipe/core"
)

// Key prefixes for different data types
const (
	cachePrefix = "cache"
	nodePrefix  = "node"
)

// makeCacheKey generates a key for a cached batch.
// Format: prefix:collection:fingerprint
func makeCacheKey(collection string, key core.Fingerprint) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", cachePrefix, collection, key))
}

// makeCollectionPrefix generates the key prefix covering one collection.
func makeCollectionPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", cachePrefix, collection))
}

// makeNodeKey generates a key for a stored node by ID.
func makeNodeKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", nodePrefix, id))
}
