package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// mockVectorDim matches the dimensionality of the small embedding models
// the pipeline is typically run against.
const mockVectorDim = 384

// MockEmbedder is a test double for ai.Embedder. By default it derives a
// stable unit vector from each text, so the same node content always
// embeds to the same vector across runs. Set the function fields to
// override either method.
type MockEmbedder struct {
	// EmbedTextFunc overrides EmbedText when non-nil.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc overrides EmbedTexts when non-nil.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder creates a mock embedder with the default text-derived
// vectors. Returns the concrete type so tests can inspect call counts.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText embeds a single text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return vectorForText(text, mockVectorDim), nil
}

// EmbedTexts embeds a batch of texts, one vector per input in order.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = vectorForText(text, mockVectorDim)
	}
	return vectors, nil
}

// CallCount returns how many times either method has been called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// vectorForText derives a unit vector from the text alone. An FNV hash of
// the text seeds an LCG that fills the components, so equal texts map to
// equal vectors and distinct texts almost never collide.
func vectorForText(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223
		vector[i] = float32(seed%1000) / 1000.0
	}

	var sumSquares float32
	for _, v := range vector {
		sumSquares += v * v
	}
	if sumSquares > 0 {
		norm := 1.0 / float32(math.Sqrt(float64(sumSquares)))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
