package embedding

import (
	"context"
	"fmt"
)

// Vectorizer is the raw embedding call of a model client (Ollama, Gemini).
type Vectorizer interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbeddingModel() string
}

// ModelEmbedder checks a model client's vectors against the configured width.
type ModelEmbedder struct {
	provider   string
	client     Vectorizer
	dimensions int
}

func NewOllamaEmbedder(client Vectorizer, dimensions int) *ModelEmbedder {
	return newModelEmbedder("ollama", client, dimensions)
}

func NewGenAIEmbedder(client Vectorizer, dimensions int) *ModelEmbedder {
	return newModelEmbedder("genai", client, dimensions)
}

func newModelEmbedder(provider string, client Vectorizer, dimensions int) *ModelEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &ModelEmbedder{provider: provider, client: client, dimensions: dimensions}
}

func (e *ModelEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.client.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	// Vector columns have a fixed width.
	if len(vector) != e.dimensions {
		return nil, fmt.Errorf("%s embedding has %d dimensions, want %d", e.Name(), len(vector), e.dimensions)
	}
	return vector, nil
}

func (e *ModelEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *ModelEmbedder) Name() string {
	return e.provider + ":" + e.client.EmbeddingModel()
}
