package memory

import (
	"math"
	"sort"
	"strings"
)

// cosineSimilarity returns 1 - cosine distance, or 0 when either side is empty
// or the widths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

type scoredIndex struct {
	index      int
	similarity float64
}

// rankBySimilarity orders candidate indexes by similarity to query, best first.
func rankBySimilarity(query []float32, vectors [][]float32, limit int) []scoredIndex {
	out := make([]scoredIndex, 0, len(vectors))
	for i, v := range vectors {
		if len(v) == 0 {
			continue
		}
		out = append(out, scoredIndex{index: i, similarity: cosineSimilarity(query, v)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].similarity > out[j].similarity })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	return append([]float32(nil), v...)
}
