package transform

import (
	"context"
	"fmt"
	"maps"

	"github.com/poiesic/docpipe/core"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the default maximum chunk length in characters.
	DefaultChunkSize = 1024

	// DefaultChunkOverlap is the default overlap between adjacent chunks.
	DefaultChunkOverlap = 128
)

// Splitter chunks node content into smaller derived nodes. Each derived node
// carries a deterministic content-based ID, the parent node's ID as SourceId,
// and a copy of the parent's metadata.
type Splitter struct {
	splitter     textsplitter.TextSplitter
	chunkSize    int
	chunkOverlap int
}

var _ Transformation = (*Splitter)(nil)

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) SplitterOption {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the overlap between adjacent chunks.
func WithChunkOverlap(overlap int) SplitterOption {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// NewSplitter creates a splitter transformation with the given options.
func NewSplitter(opts ...SplitterOption) *Splitter {
	s := &Splitter{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)
	return s
}

// Name returns the transformation name.
func (s *Splitter) Name() string {
	return "splitter"
}

// Spec returns the serializable configuration.
func (s *Splitter) Spec() core.TransformSpec {
	return core.TransformSpec{
		Name: s.Name(),
		Params: map[string]any{
			"chunk_size":    s.chunkSize,
			"chunk_overlap": s.chunkOverlap,
		},
	}
}

// Apply splits every node's content and returns the derived chunk nodes in
// source order. A node whose content fits in a single chunk still yields a
// derived node, so downstream stages see a uniform batch.
func (s *Splitter) Apply(ctx context.Context, nodes []*core.Node, opts *Options) ([]*core.Node, error) {
	var tracker *ProgressTracker
	if opts.showProgress() {
		tracker = NewProgressTracker(opts.progressWriter(), len(nodes), 1)
		tracker.Start()
		defer tracker.Finish()
	}

	result := make([]*core.Node, 0, len(nodes))
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunks, err := s.splitter.SplitText(node.Content)
		if err != nil {
			return nil, fmt.Errorf("splitting node %s: %w", node.Id, err)
		}

		for i, chunk := range chunks {
			derived := &core.Node{
				Id:       core.IDFromContent(fmt.Sprintf("%s#%d:%s", node.Id, i, chunk)),
				SourceId: node.Id,
				Content:  chunk,
				Metadata: maps.Clone(node.Metadata),
			}
			result = append(result, derived)
		}

		if tracker != nil {
			tracker.Increment(1)
		}
	}

	return result, nil
}
