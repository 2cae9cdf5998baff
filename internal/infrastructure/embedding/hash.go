package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

const DefaultDimensions = 768

// HashEmbedder derives a deterministic unit vector from SHA-256 digests of
// the normalised text. It needs no model and is the fallback of last resort.
type HashEmbedder struct {
	dimensions int
}

func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	normalized := []byte(strings.ToLower(strings.TrimSpace(text)))
	buf := make([]byte, len(normalized)+4)
	copy(buf, normalized)

	vector := make([]float32, e.dimensions)
	var sumSquares float64
	for i := range vector {
		binary.LittleEndian.PutUint32(buf[len(normalized):], uint32(int32(i)))
		digest := sha256.Sum256(buf)
		value := float32(int32(binary.LittleEndian.Uint32(digest[:4]))) / float32(math.MaxInt32)
		vector[i] = value
		sumSquares += float64(value) * float64(value)
	}

	if magnitude := float32(math.Sqrt(sumSquares)); magnitude > 0 {
		for i := range vector {
			vector[i] /= magnitude
		}
	}
	return vector, nil
}

func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *HashEmbedder) Name() string {
	return "hash"
}
