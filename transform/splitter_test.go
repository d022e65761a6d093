package transform

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/docpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitter_Apply(t *testing.T) {
	splitter := NewSplitter(WithChunkSize(40), WithChunkOverlap(0))

	long := strings.Repeat("Some sentence about pipelines. ", 10)
	nodes := []*core.Node{
		{Id: "doc1", Content: long, Metadata: map[string]string{"path": "/tmp/doc1.txt"}},
	}

	result, err := splitter.Apply(context.Background(), nodes, nil)
	require.NoError(t, err)
	require.Greater(t, len(result), 1, "long content should split into multiple chunks")

	for _, node := range result {
		assert.Equal(t, "doc1", node.SourceId)
		assert.NotEmpty(t, node.Id)
		assert.LessOrEqual(t, len(node.Content), 40)
		assert.Equal(t, "/tmp/doc1.txt", node.Metadata["path"], "metadata should be inherited")
	}
}

func TestSplitter_Apply_MetadataIsCopied(t *testing.T) {
	splitter := NewSplitter(WithChunkSize(1024))

	parent := &core.Node{Id: "doc1", Content: "short", Metadata: map[string]string{"path": "/a"}}
	result, err := splitter.Apply(context.Background(), []*core.Node{parent}, nil)
	require.NoError(t, err)
	require.Len(t, result, 1)

	result[0].Metadata["path"] = "/b"
	assert.Equal(t, "/a", parent.Metadata["path"], "mutating a chunk must not touch the parent")
}

func TestSplitter_Apply_DeterministicIDs(t *testing.T) {
	splitter := NewSplitter(WithChunkSize(30), WithChunkOverlap(0))

	nodes := func() []*core.Node {
		return []*core.Node{{Id: "doc1", Content: strings.Repeat("chunk me up please. ", 8)}}
	}

	first, err := splitter.Apply(context.Background(), nodes(), nil)
	require.NoError(t, err)
	second, err := splitter.Apply(context.Background(), nodes(), nil)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Id, second[i].Id, "chunk IDs must be stable across runs")
	}
}

func TestSplitter_Apply_EmptyBatch(t *testing.T) {
	splitter := NewSplitter()

	result, err := splitter.Apply(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestSplitter_Spec(t *testing.T) {
	a := NewSplitter(WithChunkSize(100)).Spec()
	b := NewSplitter(WithChunkSize(200)).Spec()

	ca, err := a.Canonical()
	require.NoError(t, err)
	cb, err := b.Canonical()
	require.NoError(t, err)

	assert.NotEqual(t, ca, cb, "different chunk sizes must yield different specs")
}
