// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"log/slog"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/reader"
	"github.com/poiesic/docpipe/storage"
	"github.com/poiesic/docpipe/transform"
)

// Pipeline assembles input nodes from documents and readers, runs them
// through a transformation chain, and forwards embedded results to a sink.
type Pipeline struct {
	transformations []transform.Transformation
	cache           storage.Cache
	collection      string
	documents       []*core.Node
	source          reader.Reader
	sink            storage.VectorStore
	concurrent      bool
	options         *transform.Options
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithCache enables stage memoization through the given cache.
func WithCache(cache storage.Cache) Option {
	return func(p *Pipeline) error {
		p.cache = cache
		return nil
	}
}

// WithCollection sets the cache collection to use.
// Default is storage.DefaultCollection.
func WithCollection(collection string) Option {
	return func(p *Pipeline) error {
		p.collection = collection
		return nil
	}
}

// WithDocuments pre-configures documents included in every run.
func WithDocuments(documents ...*core.Node) Option {
	return func(p *Pipeline) error {
		p.documents = append(p.documents, documents...)
		return nil
	}
}

// WithReader pre-configures a document source included in every run.
func WithReader(source reader.Reader) Option {
	return func(p *Pipeline) error {
		p.source = source
		return nil
	}
}

// WithSink forwards embedded result nodes to the given vector store after
// each run.
func WithSink(sink storage.VectorStore) Option {
	return func(p *Pipeline) error {
		p.sink = sink
		return nil
	}
}

// WithConcurrency selects the concurrent executor, letting stages that
// support it parallelize their own sub-batch work.
func WithConcurrency(concurrent bool) Option {
	return func(p *Pipeline) error {
		p.concurrent = concurrent
		return nil
	}
}

// WithTransformOptions sets the option bag forwarded to every stage.
func WithTransformOptions(opts *transform.Options) Option {
	return func(p *Pipeline) error {
		p.options = opts
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// New creates a pipeline over the given transformation chain.
func New(transformations []transform.Transformation, opts ...Option) (*Pipeline, error) {
	if len(transformations) == 0 {
		return nil, ErrTransformationRequired
	}

	p := &Pipeline{
		transformations: transformations,
		logger:          slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// RunInput holds per-run inputs merged with the pipeline's pre-configured
// sources.
type RunInput struct {
	// Documents are source documents for this run.
	Documents []*core.Node

	// Nodes are already-derived nodes for this run.
	Nodes []*core.Node
}

// Run assembles the input batch, executes the transformation chain, and
// forwards embedded results to the sink if one is configured.
//
// The batch merges, in order: the run's documents, the run's nodes, the
// pipeline's pre-configured documents, then the reader's output. The returned
// batch is exactly the transformation chain's result regardless of sink
// behavior.
func (p *Pipeline) Run(ctx context.Context, input *RunInput) ([]*core.Node, error) {
	if input == nil {
		input = &RunInput{}
	}

	batch, err := p.assembleBatch(ctx, input)
	if err != nil {
		return nil, err
	}

	runOpts := &RunOptions{
		Cache:      p.cache,
		Collection: p.collection,
		Options:    p.options,
		Logger:     p.logger,
	}

	var result []*core.Node
	if p.concurrent {
		result, err = RunTransformationsConcurrent(ctx, batch, p.transformations, runOpts)
	} else {
		result, err = RunTransformations(ctx, batch, p.transformations, runOpts)
	}
	if err != nil {
		return nil, err
	}

	if p.sink != nil {
		if err := p.forwardToSink(ctx, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (p *Pipeline) assembleBatch(ctx context.Context, input *RunInput) ([]*core.Node, error) {
	var batch []*core.Node
	batch = append(batch, input.Documents...)
	batch = append(batch, input.Nodes...)
	batch = append(batch, p.documents...)

	if p.source != nil {
		read, err := p.source.Read(ctx)
		if err != nil {
			return nil, err
		}
		batch = append(batch, read...)
	}
	return batch, nil
}

// forwardToSink adds embedded nodes to the sink. Nodes without a vector are
// dropped from forwarding, not treated as errors.
func (p *Pipeline) forwardToSink(ctx context.Context, nodes []*core.Node) error {
	embedded := make([]*core.Node, 0, len(nodes))
	for _, node := range nodes {
		if len(node.Vector) > 0 {
			embedded = append(embedded, node)
		}
	}
	if len(embedded) == 0 {
		return nil
	}
	p.logger.Debug("forwarding nodes to sink", "count", len(embedded), "dropped", len(nodes)-len(embedded))
	return p.sink.Add(ctx, embedded...)
}

// Release releases resources held by transformations that own worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	for _, t := range p.transformations {
		if r, ok := t.(transform.Releaser); ok {
			r.Release()
		}
	}
}
