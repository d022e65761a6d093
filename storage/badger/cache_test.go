package badger

import (
	"context"
	"testing"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return cache
}

func cacheNodes(contents ...string) []*core.Node {
	nodes := make([]*core.Node, len(contents))
	for i, c := range contents {
		nodes[i] = &core.Node{
			Id:       core.IDFromContent(c),
			Content:  c,
			Metadata: map[string]string{"origin": "test"},
		}
	}
	return nodes
}

func TestCache_PutGet(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	nodes := cacheNodes("first chunk", "second chunk")
	key := core.Fingerprint("abc123")

	require.NoError(t, cache.Put(ctx, key, nodes, ""))

	got, found, err := cache.Get(ctx, key, "")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, nodes, got)
}

func TestCache_Miss(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	got, found, err := cache.Get(ctx, "never-stored", "")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestCache_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	key := core.Fingerprint("abc123")
	require.NoError(t, cache.Put(ctx, key, cacheNodes("old"), ""))
	require.NoError(t, cache.Put(ctx, key, cacheNodes("new"), ""))

	got, found, err := cache.Get(ctx, key, "")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Content)
}

func TestCache_Collections(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	key := core.Fingerprint("shared")
	require.NoError(t, cache.Put(ctx, key, cacheNodes("in-a"), "coll-a"))
	require.NoError(t, cache.Put(ctx, key, cacheNodes("in-b"), "coll-b"))

	got, found, err := cache.Get(ctx, key, "coll-a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "in-a", got[0].Content)

	got, found, err = cache.Get(ctx, key, "coll-b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "in-b", got[0].Content)
}

func TestCache_Clear(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	require.NoError(t, cache.Put(ctx, "k1", cacheNodes("one"), "coll-a"))
	require.NoError(t, cache.Put(ctx, "k2", cacheNodes("two"), "coll-a"))
	require.NoError(t, cache.Put(ctx, "k1", cacheNodes("other"), "coll-b"))

	require.NoError(t, cache.Clear(ctx, "coll-a"))

	_, found, err := cache.Get(ctx, "k1", "coll-a")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = cache.Get(ctx, "k2", "coll-a")
	require.NoError(t, err)
	assert.False(t, found)

	// Other collection is untouched.
	_, found, err = cache.Get(ctx, "k1", "coll-b")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCache_EmptyBatch(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	key := core.Fingerprint("empty")
	require.NoError(t, cache.Put(ctx, key, nil, ""))

	got, found, err := cache.Get(ctx, key, "")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}

func TestCache_ClosedBackend(t *testing.T) {
	ctx := context.Background()
	cache, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, _, err = cache.Get(ctx, "k", "")
	assert.ErrorIs(t, err, storage.ErrCacheUnavailable)

	err = cache.Put(ctx, "k", cacheNodes("x"), "")
	assert.ErrorIs(t, err, storage.ErrCacheUnavailable)
}
