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


package docpipe

import (
	"log/slog"

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/ai/openai"
	"github.com/poiesic/docpipe/pipeline"
	"github.com/poiesic/docpipe/search"
	"github.com/poiesic/docpipe/storage/badger"
	"github.com/poiesic/docpipe/transform"
)

// Workspace bundles the storage backend, AI provider, and factories for
// pipelines and searchers over a single on-disk database.
type Workspace struct {
	backend  *badger.Backend
	cache    *badger.Cache
	store    *badger.VectorStore
	provider ai.Provider
	logger   *slog.Logger
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(cfg *ai.Config) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider injects a pre-built AI provider, bypassing the OpenAI client.
// Useful for tests.
func WithProvider(provider ai.Provider) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the backend in memory instead of on disk.
func WithInMemory(inMemory bool) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.inMemory = inMemory
	}
}

// Open creates a workspace over the database at filePath.
func Open(filePath string, opts ...WorkspaceOption) (*Workspace, error) {
	options := &workspaceOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &Workspace{
		backend:  backend,
		cache:    badger.NewCache(backend),
		store:    badger.NewVectorStore(backend),
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close releases the AI provider and the storage backend.
func (w *Workspace) Close() error {
	if err := w.provider.Close(); err != nil {
		w.logger.Error("error closing AI provider", "err", err)
	}
	if err := w.backend.Close(); err != nil {
		w.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Cache returns the workspace's transformation cache.
func (w *Workspace) Cache() *badger.Cache {
	return w.cache
}

// VectorStore returns the workspace's vector store.
func (w *Workspace) VectorStore() *badger.VectorStore {
	return w.store
}

// DefaultTransformations builds the standard chain: split, extract keywords,
// embed. Splitter options tune the chunking stage.
func (w *Workspace) DefaultTransformations(splitterOpts ...transform.SplitterOption) ([]transform.Transformation, error) {
	keywords, err := transform.NewKeywords(w.provider.KeywordExtractor())
	if err != nil {
		return nil, err
	}
	embedding, err := transform.NewEmbedding(w.provider.Embedder())
	if err != nil {
		return nil, err
	}
	return []transform.Transformation{
		transform.NewSplitter(splitterOpts...),
		keywords,
		embedding,
	}, nil
}

// NewPipeline creates a pipeline over the given transformations, wired to
// the workspace's cache and vector store. Pass the result of
// DefaultTransformations for the standard chain.
func (w *Workspace) NewPipeline(transformations []transform.Transformation, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	base := []pipeline.Option{
		pipeline.WithCache(w.cache),
		pipeline.WithSink(w.store),
	}
	return pipeline.New(transformations, append(base, opts...)...)
}

// NewSearcher creates a searcher over the workspace's vector store.
func (w *Workspace) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(w.store, w.provider.Embedder(), opts...)
}
