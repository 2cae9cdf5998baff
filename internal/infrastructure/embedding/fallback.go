package embedding

import (
	"context"

	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

// FallbackEmbedder tries primary first and answers from secondary when it fails.
type FallbackEmbedder struct {
	primary   usecase.EmbeddingGenerator
	secondary usecase.EmbeddingGenerator
	logger    *logging.Logger
}

func NewFallbackEmbedder(primary, secondary usecase.EmbeddingGenerator, logger *logging.Logger) *FallbackEmbedder {
	if secondary == nil {
		secondary = NewHashEmbedder(primary.Dimensions())
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackEmbedder{primary: primary, secondary: secondary, logger: logger}
}

func (e *FallbackEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.primary.Embed(ctx, text)
	if err == nil {
		return vector, nil
	}
	e.logger.WarnContext(ctx, "primary embedder failed, using fallback",
		"primary", e.primary.Name(),
		"fallback", e.secondary.Name(),
		"error", err,
	)
	return e.secondary.Embed(ctx, text)
}

func (e *FallbackEmbedder) Dimensions() int {
	return e.primary.Dimensions()
}

func (e *FallbackEmbedder) Name() string {
	return e.primary.Name()
}
