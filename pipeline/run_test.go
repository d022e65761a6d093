package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/storage"
	"github.com/poiesic/docpipe/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTransform implements transform.Transformation for testing with call
// counting and a pluggable batch function.
type testTransform struct {
	name            string
	params          map[string]any
	fn              func([]*core.Node) []*core.Node
	err             error
	applyCalls      int
	concurrentCalls int
}

func (t *testTransform) Name() string { return t.name }

func (t *testTransform) Spec() core.TransformSpec {
	return core.TransformSpec{Name: t.name, Params: t.params}
}

func (t *testTransform) Apply(ctx context.Context, nodes []*core.Node, opts *transform.Options) ([]*core.Node, error) {
	t.applyCalls++
	if t.err != nil {
		return nil, t.err
	}
	return t.fn(nodes), nil
}

func (t *testTransform) ApplyConcurrent(ctx context.Context, nodes []*core.Node, opts *transform.Options) ([]*core.Node, error) {
	t.concurrentCalls++
	if t.err != nil {
		return nil, t.err
	}
	return t.fn(nodes), nil
}

var (
	_ transform.Transformation           = (*testTransform)(nil)
	_ transform.ConcurrentTransformation = (*testTransform)(nil)
)

// mapContent returns a transform that rewrites each node's content through fn,
// deriving new IDs from the new content.
func mapContent(name string, fn func(string) string) *testTransform {
	return &testTransform{
		name: name,
		fn: func(nodes []*core.Node) []*core.Node {
			out := make([]*core.Node, len(nodes))
			for i, n := range nodes {
				content := fn(n.Content)
				out[i] = &core.Node{
					Id:       n.Id,
					SourceId: n.SourceId,
					Content:  content,
					Metadata: n.Metadata,
					Vector:   n.Vector,
				}
			}
			return out
		},
	}
}

func uppercaseTransform() *testTransform {
	return mapContent("uppercase", strings.ToUpper)
}

// erroringCache fails every operation with a connectivity error.
type erroringCache struct{}

func (erroringCache) Get(ctx context.Context, key core.Fingerprint, collection string) ([]*core.Node, bool, error) {
	return nil, false, storage.ErrCacheUnavailable
}

func (erroringCache) Put(ctx context.Context, key core.Fingerprint, nodes []*core.Node, collection string) error {
	return storage.ErrCacheUnavailable
}

func (erroringCache) Clear(ctx context.Context, collection string) error {
	return storage.ErrCacheUnavailable
}

func (erroringCache) Close() error { return nil }

func helloBatch() []*core.Node {
	return []*core.Node{{Id: "a", Content: "hello"}}
}

func TestRunTransformations_ConcreteScenario(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewMemoryCache()
	defer cache.Close()

	upper := uppercaseTransform()
	opts := &RunOptions{Cache: cache}

	// First run: one apply, one cache entry.
	result, err := RunTransformations(ctx, helloBatch(), []transform.Transformation{upper}, opts)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "a", result[0].Id)
	assert.Equal(t, "HELLO", result[0].Content)
	assert.Equal(t, 1, upper.applyCalls)
	assert.Equal(t, 1, cache.Len(""))

	// Second run: zero applies, identical result.
	second, err := RunTransformations(ctx, helloBatch(), []transform.Transformation{upper}, opts)
	require.NoError(t, err)
	assert.Equal(t, result, second)
	assert.Equal(t, 1, upper.applyCalls)
}

func TestRunTransformations_CacheIdempotence(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewMemoryCache()
	defer cache.Close()

	upper := uppercaseTransform()
	suffix := mapContent("suffix", func(s string) string { return s + "!" })
	chain := []transform.Transformation{upper, suffix}
	opts := &RunOptions{Cache: cache}

	batch := []*core.Node{
		{Id: "a", Content: "one"},
		{Id: "b", Content: "two"},
	}

	first, err := RunTransformations(ctx, batch, chain, opts)
	require.NoError(t, err)

	second, err := RunTransformations(ctx, batch, chain, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, upper.applyCalls)
	assert.Equal(t, 1, suffix.applyCalls)
}

func TestRunTransformations_OrderPreservation(t *testing.T) {
	ctx := context.Background()

	// A non-commutative pair: doubling then truncating differs from
	// truncating then doubling.
	double := mapContent("double", func(s string) string { return s + s })
	head := mapContent("head", func(s string) string { return s[:1] })

	ab, err := RunTransformations(ctx, helloBatch(), []transform.Transformation{double, head}, nil)
	require.NoError(t, err)
	ba, err := RunTransformations(ctx, helloBatch(), []transform.Transformation{head, double}, nil)
	require.NoError(t, err)

	assert.Equal(t, "h", ab[0].Content)
	assert.Equal(t, "hh", ba[0].Content)
	assert.NotEqual(t, ab[0].Content, ba[0].Content)
}

func TestRunTransformations_CacheBypass(t *testing.T) {
	ctx := context.Background()
	upper := uppercaseTransform()
	chain := []transform.Transformation{upper}

	for range 3 {
		result, err := RunTransformations(ctx, helloBatch(), chain, nil)
		require.NoError(t, err)
		assert.Equal(t, "HELLO", result[0].Content)
	}
	assert.Equal(t, 3, upper.applyCalls)
}

func TestRunTransformations_EmptyChain(t *testing.T) {
	ctx := context.Background()
	batch := helloBatch()

	result, err := RunTransformations(ctx, batch, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, batch, result)
}

func TestRunTransformations_EmptyBatch(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewMemoryCache()
	defer cache.Close()

	// A generator-like transform produces nodes from an empty batch.
	generator := &testTransform{
		name: "generator",
		fn: func(nodes []*core.Node) []*core.Node {
			return append(nodes, &core.Node{Id: "gen", Content: "generated"})
		},
	}

	result, err := RunTransformations(ctx, nil, []transform.Transformation{generator}, &RunOptions{Cache: cache})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "generated", result[0].Content)

	// The empty batch still fingerprints, so the second run hits.
	_, err = RunTransformations(ctx, nil, []transform.Transformation{generator}, &RunOptions{Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, 1, generator.applyCalls)
}

func TestRunTransformations_MidChainInvalidation(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewMemoryCache()
	defer cache.Close()

	upper := uppercaseTransform()
	wrap := mapContent("wrap", func(s string) string { return "[" + s + "]" })
	opts := &RunOptions{Cache: cache}

	_, err := RunTransformations(ctx, helloBatch(), []transform.Transformation{upper, wrap}, opts)
	require.NoError(t, err)
	require.Equal(t, 1, upper.applyCalls)
	require.Equal(t, 1, wrap.applyCalls)

	// A different input misses at stage one; stage two is fingerprinted
	// from stage one's fresh output, so it misses too.
	other := []*core.Node{{Id: "b", Content: "world"}}
	_, err = RunTransformations(ctx, other, []transform.Transformation{upper, wrap}, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, upper.applyCalls)
	assert.Equal(t, 2, wrap.applyCalls)

	// Re-running the original input hits both stages.
	_, err = RunTransformations(ctx, helloBatch(), []transform.Transformation{upper, wrap}, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, upper.applyCalls)
	assert.Equal(t, 2, wrap.applyCalls)
}

func TestRunTransformations_CacheUnavailable(t *testing.T) {
	ctx := context.Background()
	upper := uppercaseTransform()
	opts := &RunOptions{Cache: erroringCache{}}

	// Connectivity failures degrade to recomputation, never to an error.
	for range 2 {
		result, err := RunTransformations(ctx, helloBatch(), []transform.Transformation{upper}, opts)
		require.NoError(t, err)
		assert.Equal(t, "HELLO", result[0].Content)
	}
	assert.Equal(t, 2, upper.applyCalls)
}

func TestRunTransformations_FailurePropagates(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewMemoryCache()
	defer cache.Close()

	boom := errors.New("boom")
	failing := &testTransform{name: "failing", err: boom}

	_, err := RunTransformations(ctx, helloBatch(), []transform.Transformation{failing}, &RunOptions{Cache: cache})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransformationFailed)
	assert.ErrorIs(t, err, boom)

	// A failed stage's output is never cached.
	assert.Equal(t, 0, cache.Len(""))
}

func TestRunTransformations_CollectionScoping(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewMemoryCache()
	defer cache.Close()

	upper := uppercaseTransform()
	chain := []transform.Transformation{upper}

	_, err := RunTransformations(ctx, helloBatch(), chain, &RunOptions{Cache: cache, Collection: "run-a"})
	require.NoError(t, err)

	// Same input in a different collection recomputes.
	_, err = RunTransformations(ctx, helloBatch(), chain, &RunOptions{Cache: cache, Collection: "run-b"})
	require.NoError(t, err)
	assert.Equal(t, 2, upper.applyCalls)
}

func TestRunTransformationsConcurrent_Equivalence(t *testing.T) {
	ctx := context.Background()

	seqUpper := uppercaseTransform()
	seqWrap := mapContent("wrap", func(s string) string { return "[" + s + "]" })
	sequential, err := RunTransformations(ctx, helloBatch(), []transform.Transformation{seqUpper, seqWrap}, nil)
	require.NoError(t, err)

	conUpper := uppercaseTransform()
	conWrap := mapContent("wrap", func(s string) string { return "[" + s + "]" })
	concurrent, err := RunTransformationsConcurrent(ctx, helloBatch(), []transform.Transformation{conUpper, conWrap}, nil)
	require.NoError(t, err)

	assert.Equal(t, sequential, concurrent)
	assert.Equal(t, 1, conUpper.concurrentCalls)
	assert.Equal(t, 0, conUpper.applyCalls)
}

func TestRunTransformationsConcurrent_SharedCache(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewMemoryCache()
	defer cache.Close()

	// A sequential run populates the cache; the concurrent run hits it.
	seq := uppercaseTransform()
	_, err := RunTransformations(ctx, helloBatch(), []transform.Transformation{seq}, &RunOptions{Cache: cache})
	require.NoError(t, err)

	con := uppercaseTransform()
	result, err := RunTransformationsConcurrent(ctx, helloBatch(), []transform.Transformation{con}, &RunOptions{Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", result[0].Content)
	assert.Equal(t, 0, con.concurrentCalls)
	assert.Equal(t, 0, con.applyCalls)
}

func TestRunTransformations_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	upper := uppercaseTransform()
	_, err := RunTransformations(ctx, helloBatch(), []transform.Transformation{upper}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, upper.applyCalls)
}
