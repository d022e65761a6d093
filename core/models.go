package core

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// IDFromContent generates a deterministic node ID from text content using
// BLAKE2b hashing. Identical content always produces the same ID, which keeps
// split-derived nodes stable across pipeline runs.
func IDFromContent(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Node is a content-bearing unit flowing through the pipeline: a source
// document or a derived chunk. Batches of nodes are ordered sequences; the
// engine preserves batch order unless a transformation explicitly reorders.
type Node struct {
	Id       string
	SourceId string // ID of the document this node was derived from, if any
	Content  string
	Metadata map[string]string // Optional metadata (e.g., "path", "keywords")
	Vector   []float32         // Embedding vector (populated by the embedding transformation)
}

// FullContent returns the canonical content-plus-metadata representation of
// the node, used for fingerprinting. The format is the content followed by
// one "key: value" line per metadata entry in ascending key order. The only
// guarantee is stability for identical input; the exact byte layout is not a
// compatibility surface.
func (n *Node) FullContent() string {
	if len(n.Metadata) == 0 {
		return n.Content
	}

	keys := make([]string, 0, len(n.Metadata))
	for k := range n.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(n.Content)
	for _, k := range keys {
		b.WriteString("\n")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(n.Metadata[k])
	}
	return b.String()
}

// SearchResult represents a vector store match with its relevance score.
type SearchResult struct {
	Node  *Node
	Score float32
}
