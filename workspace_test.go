package docpipe

import (
	"context"
	"testing"

	"github.com/poiesic/docpipe/ai/mock"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := Open("", WithInMemory(true), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestOpenClose(t *testing.T) {
	ws, err := Open(t.TempDir(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, ws.Cache())
	require.NotNil(t, ws.VectorStore())
	require.NoError(t, ws.Close())
}

func TestWorkspace_EndToEnd(t *testing.T) {
	ctx := context.Background()
	ws := openTestWorkspace(t)

	transformations, err := ws.DefaultTransformations()
	require.NoError(t, err)

	p, err := ws.NewPipeline(transformations)
	require.NoError(t, err)
	defer p.Release()

	doc := &core.Node{
		Id:      core.IDFromContent("intro"),
		Content: "Document pipelines split text into nodes, extract keywords, and embed each node for retrieval.",
	}

	result, err := p.Run(ctx, &pipeline.RunInput{Documents: []*core.Node{doc}})
	require.NoError(t, err)
	require.NotEmpty(t, result)

	for _, node := range result {
		assert.NotEmpty(t, node.Content)
		assert.NotEmpty(t, node.Vector)
		assert.NotEmpty(t, node.Metadata["keywords"])
	}

	// Embedded nodes reached the sink.
	count, err := ws.VectorStore().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(result), count)
}

func TestWorkspace_SecondRunHitsCache(t *testing.T) {
	ctx := context.Background()
	ws := openTestWorkspace(t)

	transformations, err := ws.DefaultTransformations()
	require.NoError(t, err)

	p, err := ws.NewPipeline(transformations)
	require.NoError(t, err)
	defer p.Release()

	doc := &core.Node{Id: "doc", Content: "repeatable content for cache testing"}

	first, err := p.Run(ctx, &pipeline.RunInput{Documents: []*core.Node{doc}})
	require.NoError(t, err)

	second, err := p.Run(ctx, &pipeline.RunInput{Documents: []*core.Node{doc}})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWorkspace_Search(t *testing.T) {
	ctx := context.Background()
	ws := openTestWorkspace(t)

	transformations, err := ws.DefaultTransformations()
	require.NoError(t, err)

	p, err := ws.NewPipeline(transformations)
	require.NoError(t, err)
	defer p.Release()

	doc := &core.Node{Id: "doc", Content: "the database migration completed without errors"}
	_, err = p.Run(ctx, &pipeline.RunInput{Documents: []*core.Node{doc}})
	require.NoError(t, err)

	searcher, err := ws.NewSearcher()
	require.NoError(t, err)

	// The mock embedder is deterministic on input text, so the exact
	// document text retrieves its own node.
	results, err := searcher.FindSimilar(ctx, "the database migration completed without errors", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Node.Content, "database migration")
}
