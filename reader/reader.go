// Package reader loads source documents into pipeline nodes.
package reader

import (
	"context"

	"github.com/poiesic/docpipe/core"
)

// Reader produces a batch of nodes from some document source. Implementations
// decide what a document is (a file, a row, an API response); the pipeline
// only sees the resulting nodes.
type Reader interface {
	Read(ctx context.Context) ([]*core.Node, error)
}
