package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/docpipe/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder turns node text into vectors via an OpenAI-compatible
// embeddings endpoint.
type Embedder struct {
	backend embeddings.Embedder
	logger  *slog.Logger
}

// newEmbedder builds the concrete embedder used by Provider.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Local OpenAI-compatible servers accept any token; "none" keeps the
	// client from failing on a missing credential.
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Node content frequently spans lines; strip newlines so chunk text
	// embeds the same regardless of how the splitter broke it.
	backend, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		backend: backend,
		logger:  slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates an embedder backed by the configured endpoint.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText embeds a single piece of node content. It is a batch of one;
// query embedding in search goes through here.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		e.logger.Warn("endpoint returned no vector for text", "length", len(text))
		return []float32{}, nil
	}
	return vectors[0], nil
}

// EmbedTexts embeds a batch of node contents in one request, preserving
// input order in the returned vectors.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("embedding node batch", "nodes", len(texts))

	vectors, err := e.backend.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("embedding request failed", "nodes", len(texts), "err", err)
		return nil, err
	}

	return vectors, nil
}
