package storage

import (
	"testing"

	"github.com/poiesic/docpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalNode(t *testing.T) {
	tests := []struct {
		name string
		node *core.Node
	}{
		{
			"full node",
			&core.Node{
				Id:       core.IDFromContent("full"),
				SourceId: "doc-1",
				Content:  "The quick brown fox",
				Metadata: map[string]string{"author": "alice", "lang": "en"},
				Vector:   []float32{0.1, -0.2, 0.3},
			},
		},
		{
			"minimal node",
			&core.Node{Id: "n1", Content: "x"},
		},
		{
			"unicode content",
			&core.Node{Id: "n2", Content: "héllo wörld é世界"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalNode(tt.node)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalNode(data)
			require.NoError(t, err)
			assert.Equal(t, tt.node, decoded)
		})
	}
}

func TestUnmarshalNode_Truncated(t *testing.T) {
	node := &core.Node{Id: "n1", Content: "some content", Metadata: map[string]string{"k": "v"}}
	data := MarshalNode(node)

	_, err := UnmarshalNode(data[:len(data)/2])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalNodes(t *testing.T) {
	nodes := []*core.Node{
		{Id: "a", Content: "first", Vector: []float32{1, 0}},
		{Id: "b", Content: "second", Metadata: map[string]string{"k": "v"}},
		{Id: "c", Content: "third"},
	}

	data := MarshalNodes(nodes)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalNodes(data)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	assert.Equal(t, nodes, decoded)
}

func TestMarshalUnmarshalNodes_Empty(t *testing.T) {
	data := MarshalNodes(nil)
	decoded, err := UnmarshalNodes(data)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
