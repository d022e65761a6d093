package transform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/core"
)

// KeywordsMetadataKey is the node metadata key the Keywords transformation
// writes its result under.
const KeywordsMetadataKey = "keywords"

// Keywords annotates each node's metadata with descriptive keywords from an
// ai.KeywordExtractor. Keywords land under KeywordsMetadataKey as a
// comma-separated list.
type Keywords struct {
	extractor ai.KeywordExtractor
	logger    *slog.Logger
}

var _ Transformation = (*Keywords)(nil)

// NewKeywords creates a keyword extraction transformation.
func NewKeywords(extractor ai.KeywordExtractor) (*Keywords, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	return &Keywords{
		extractor: extractor,
		logger:    slog.Default().With("transformation", "keywords"),
	}, nil
}

// Name returns the transformation name.
func (k *Keywords) Name() string {
	return "keywords"
}

// Spec returns the serializable configuration.
func (k *Keywords) Spec() core.TransformSpec {
	return core.TransformSpec{
		Name:   k.Name(),
		Params: map[string]any{"metadata_key": KeywordsMetadataKey},
	}
}

// Apply extracts keywords for every node and writes them to node metadata.
// Nodes for which no keywords are found are left untouched.
func (k *Keywords) Apply(ctx context.Context, nodes []*core.Node, opts *Options) ([]*core.Node, error) {
	var tracker *ProgressTracker
	if opts.showProgress() {
		tracker = NewProgressTracker(opts.progressWriter(), len(nodes), 1)
		tracker.Start()
		defer tracker.Finish()
	}

	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		keywords, err := k.extractor.ExtractKeywords(ctx, node.Content)
		if err != nil {
			return nil, fmt.Errorf("extracting keywords for node %s: %w", node.Id, err)
		}

		if len(keywords) > 0 {
			if node.Metadata == nil {
				node.Metadata = make(map[string]string, 1)
			}
			node.Metadata[KeywordsMetadataKey] = strings.Join(keywords, ", ")
		}

		if tracker != nil {
			tracker.Increment(1)
		}
	}

	return nodes, nil
}
