package transform

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/core"
)

const (
	// DefaultEmbedBatchSize is the number of nodes sent to the embedder per call.
	DefaultEmbedBatchSize = 32

	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second
)

// Embedding populates node vectors via an ai.Embedder. Vectors are
// normalized to unit length after embedding.
//
// Embedding implements ConcurrentTransformation: ApplyConcurrent fans
// sub-batches out on a worker pool, which pays off when the embedder is a
// remote API. Both paths produce identical output.
type Embedding struct {
	embedder       ai.Embedder
	pool           *ants.Pool
	model          string
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

var (
	_ Transformation           = (*Embedding)(nil)
	_ ConcurrentTransformation = (*Embedding)(nil)
	_ Releaser                 = (*Embedding)(nil)
)

// EmbeddingOption configures an Embedding transformation.
type EmbeddingOption func(*Embedding) error

// WithModel records the embedding model identifier in the transformation
// spec so that switching models invalidates cached results.
func WithModel(model string) EmbeddingOption {
	return func(e *Embedding) error {
		e.model = model
		return nil
	}
}

// WithEmbedBatchSize sets the number of nodes per embedder call.
func WithEmbedBatchSize(size int) EmbeddingOption {
	return func(e *Embedding) error {
		if size > 0 {
			e.batchSize = size
		}
		return nil
	}
}

// WithEmbedPoolSize sets the worker pool size for ApplyConcurrent.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithEmbedPoolSize(size int) EmbeddingOption {
	return func(e *Embedding) error {
		if size < 1 {
			size = 1
		}

		if e.pool != nil {
			e.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithEmbedRetry configures retry behavior around embedder calls.
func WithEmbedRetry(maxRetries int, baseDelay time.Duration) EmbeddingOption {
	return func(e *Embedding) error {
		if maxRetries > 0 {
			e.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			e.retryBaseDelay = baseDelay
		}
		return nil
	}
}

// WithEmbedLogger sets a custom logger. Default is slog.Default().
func WithEmbedLogger(logger *slog.Logger) EmbeddingOption {
	return func(e *Embedding) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("transformation", "embedding")
		return nil
	}
}

// NewEmbedding creates an embedding transformation.
func NewEmbedding(embedder ai.Embedder, opts ...EmbeddingOption) (*Embedding, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Embedding{
		embedder:       embedder,
		pool:           pool,
		batchSize:      DefaultEmbedBatchSize,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		logger:         slog.Default().With("transformation", "embedding"),
	}

	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}

	return e, nil
}

// Name returns the transformation name.
func (e *Embedding) Name() string {
	return "embedding"
}

// Spec returns the serializable configuration. Only knobs that influence the
// output participate: pool size, batch size and retry settings change how
// fast vectors arrive, not what they are.
func (e *Embedding) Spec() core.TransformSpec {
	return core.TransformSpec{
		Name: e.Name(),
		Params: map[string]any{
			"model": e.model,
		},
	}
}

// Apply embeds the batch sequentially, one sub-batch per embedder call.
func (e *Embedding) Apply(ctx context.Context, nodes []*core.Node, opts *Options) ([]*core.Node, error) {
	tracker := e.startTracker(nodes, opts)
	if tracker != nil {
		defer tracker.Finish()
	}

	for start := 0; start < len(nodes); start += e.batchSize {
		end := min(start+e.batchSize, len(nodes))
		if err := e.embedChunk(ctx, nodes[start:end]); err != nil {
			return nil, err
		}
		if tracker != nil {
			tracker.Increment(end - start)
		}
	}

	return nodes, nil
}

// ApplyConcurrent embeds the batch with sub-batches running concurrently on
// the worker pool. Sub-batch results land in place, so batch order is
// preserved regardless of completion order.
func (e *Embedding) ApplyConcurrent(ctx context.Context, nodes []*core.Node, opts *Options) ([]*core.Node, error) {
	tracker := e.startTracker(nodes, opts)
	if tracker != nil {
		defer tracker.Finish()
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(nodes); start += e.batchSize {
		end := min(start+e.batchSize, len(nodes))
		chunk := nodes[start:end]

		wg.Add(1)
		submitErr := e.pool.Submit(func() {
			defer wg.Done()

			if err := e.embedChunk(ctx, chunk); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			if tracker != nil {
				tracker.Increment(len(chunk))
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	return nodes, nil
}

// Release releases the worker pool. The transformation should not be used
// after calling Release.
func (e *Embedding) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

func (e *Embedding) startTracker(nodes []*core.Node, opts *Options) *ProgressTracker {
	if !opts.showProgress() {
		return nil
	}
	tracker := NewProgressTracker(opts.progressWriter(), len(nodes), e.batchSize)
	tracker.Start()
	return tracker
}

// embedChunk generates embeddings for a sub-batch and assigns normalized
// vectors in place.
func (e *Embedding) embedChunk(ctx context.Context, chunk []*core.Node) error {
	texts := make([]string, len(chunk))
	for i, node := range chunk {
		texts[i] = node.Content
	}

	e.logger.Debug("generating embeddings", "nodes", len(texts))

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = e.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, e.maxRetries, e.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", e.maxRetries, err)
	}

	if len(embeddings) != len(chunk) {
		return fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingMismatch, len(chunk), len(embeddings))
	}

	for i := range chunk {
		chunk[i].Vector = NormalizeVector(embeddings[i])
	}
	return nil
}
