package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

func TestHashEmbedder_DeterministicUnitVector(t *testing.T) {
	t.Parallel()

	e := NewHashEmbedder(0)
	a, err := e.Embed(context.Background(), "  Arsenal FC ")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	b, _ := e.Embed(context.Background(), "arsenal fc")

	if len(a) != DefaultDimensions {
		t.Fatalf("expected %d dimensions, got %d", DefaultDimensions, len(a))
	}
	var norm float64
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected normalised text to embed identically, differs at %d", i)
		}
		norm += float64(a[i]) * float64(a[i])
	}
	if math.Abs(norm-1) > 1e-4 {
		t.Fatalf("expected unit vector, got squared norm %f", norm)
	}

	c, _ := e.Embed(context.Background(), "Chelsea FC")
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("expected different texts to embed differently")
	}
}

type stubVectorizer struct {
	vector []float32
	err    error
}

func (s stubVectorizer) Embed(context.Context, string) ([]float32, error) { return s.vector, s.err }
func (stubVectorizer) EmbeddingModel() string                             { return "nomic-embed-text" }

func TestModelEmbedder_RejectsWrongWidth(t *testing.T) {
	t.Parallel()

	e := NewOllamaEmbedder(stubVectorizer{vector: []float32{1, 2}}, 3)
	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
	if e.Name() != "ollama:nomic-embed-text" {
		t.Fatalf("unexpected name %q", e.Name())
	}
}

func TestFallbackEmbedder_UsesHashOnPrimaryError(t *testing.T) {
	t.Parallel()

	primary := NewGenAIEmbedder(stubVectorizer{err: errors.New("quota exceeded")}, 16)
	e := NewFallbackEmbedder(primary, nil, logging.NewNop())

	vector, err := e.Embed(context.Background(), "Premier League")
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	want, _ := NewHashEmbedder(16).Embed(context.Background(), "Premier League")
	for i := range want {
		if vector[i] != want[i] {
			t.Fatalf("expected hash fallback vector, differs at %d", i)
		}
	}
}
