package usecase

import (
	"math"
	"testing"

	"github.com/civicboard/docqa/internal/core/domain"
)

func chunk(text string, page int, vec ...float32) domain.EmbeddedChunk {
	return domain.EmbeddedChunk{
		TextChunk: domain.TextChunk{Text: text, Page: page},
		Vector:    vec,
	}
}

func TestRetrieveTopKIdenticalVectorFirst(t *testing.T) {
	chunks := []domain.EmbeddedChunk{
		chunk("orthogonal", 1, 0, 1, 0),
		chunk("identical", 2, 1, 0, 0),
		chunk("diagonal", 3, 1, 1, 0),
	}

	passages := RetrieveTopK(chunks, []float32{1, 0, 0}, 8)
	if len(passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(passages))
	}
	if passages[0].Text != "identical" {
		t.Fatalf("expected identical vector first, got %q", passages[0].Text)
	}
	if passages[0].Page != 2 {
		t.Fatalf("expected page 2, got %d", passages[0].Page)
	}
	if passages[1].Text != "diagonal" {
		t.Fatalf("expected diagonal second, got %q", passages[1].Text)
	}
}

func TestRetrieveTopKDropsNonPositiveScores(t *testing.T) {
	chunks := []domain.EmbeddedChunk{
		chunk("opposite", 1, -1, 0),
		chunk("orthogonal", 2, 0, 1),
		chunk("zero", 3, 0, 0),
	}

	passages := RetrieveTopK(chunks, []float32{1, 0}, 8)
	if len(passages) != 0 {
		t.Fatalf("expected no passages, got %d", len(passages))
	}
}

func TestRetrieveTopKBoundsResult(t *testing.T) {
	var chunks []domain.EmbeddedChunk
	for i := 0; i < 20; i++ {
		chunks = append(chunks, chunk("c", i+1, 1, float32(i)))
	}

	passages := RetrieveTopK(chunks, []float32{1, 0}, 8)
	if len(passages) != 8 {
		t.Fatalf("expected 8 passages, got %d", len(passages))
	}
}

func TestRetrieveTopKTieKeepsInputOrder(t *testing.T) {
	chunks := []domain.EmbeddedChunk{
		chunk("first", 1, 2, 0),
		chunk("second", 2, 5, 0),
		chunk("third", 3, 1, 0),
	}

	// cosine similarity ignores magnitude, so all three tie at 1.0
	passages := RetrieveTopK(chunks, []float32{1, 0}, 8)
	if len(passages) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(passages))
	}
	for i, want := range []string{"first", "second", "third"} {
		if passages[i].Text != want {
			t.Fatalf("passage %d = %q, want %q", i, passages[i].Text, want)
		}
	}
}

func TestRetrieveTopKDimensionMismatchExcluded(t *testing.T) {
	chunks := []domain.EmbeddedChunk{
		chunk("mismatched", 1, 1, 0, 0),
		chunk("matched", 2, 1, 0),
	}

	passages := RetrieveTopK(chunks, []float32{1, 0}, 8)
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if passages[0].Text != "matched" {
		t.Fatalf("expected only matched chunk, got %q", passages[0].Text)
	}
}

func TestRetrieveTopKDefaultK(t *testing.T) {
	var chunks []domain.EmbeddedChunk
	for i := 0; i < 12; i++ {
		chunks = append(chunks, chunk("c", i+1, 1, 0))
	}

	passages := RetrieveTopK(chunks, []float32{1, 0}, 0)
	if len(passages) != DefaultTopK {
		t.Fatalf("expected %d passages for k=0, got %d", DefaultTopK, len(passages))
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical vectors: got %v, want 1", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("orthogonal vectors: got %v, want 0", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 0}); got != 0 {
		t.Fatalf("zero vector: got %v, want 0", got)
	}
}
