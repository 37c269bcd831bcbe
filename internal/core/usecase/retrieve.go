package usecase

import (
	"log/slog"
	"math"
	"sort"

	"github.com/civicboard/docqa/internal/core/domain"
)

const DefaultTopK = 8

// RetrieveTopK ranks chunks by cosine similarity against the query
// vector and returns the best k as passages. Chunks with non-positive
// similarity are dropped; ties keep the original chunk order.
func RetrieveTopK(chunks []domain.EmbeddedChunk, queryVector []float32, k int) []domain.Passage {
	if k <= 0 {
		k = DefaultTopK
	}

	type scored struct {
		idx   int
		score float64
	}
	candidates := make([]scored, 0, len(chunks))
	for i, chunk := range chunks {
		score := cosineSimilarity(queryVector, chunk.Vector)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	passages := make([]domain.Passage, 0, len(candidates))
	for _, c := range candidates {
		passages = append(passages, domain.Passage{
			Text: chunks[c.idx].Text,
			Page: chunks[c.idx].Page,
		})
	}
	return passages
}

// cosineSimilarity returns 0 for zero-norm vectors. A dimension mismatch
// also scores 0 but is logged: it means the embedding model changed
// under a live index, and that should not look like "no relevant text".
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		if len(a) > 0 && len(b) > 0 {
			slog.Warn("embedding_dimension_mismatch", "query_dim", len(a), "chunk_dim", len(b))
		}
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
