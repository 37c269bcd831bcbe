package chunking

import (
	"strings"
	"testing"
)

func TestSplitShortPageSingleChunk(t *testing.T) {
	s := NewSplitter(2000, 200)

	chunks := s.Split([]string{"budget discussion notes"})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "budget discussion notes" {
		t.Fatalf("unexpected chunk text: %q", chunks[0].Text)
	}
	if chunks[0].Page != 1 {
		t.Fatalf("expected page 1, got %d", chunks[0].Page)
	}
}

func TestSplitExactLimitSingleChunk(t *testing.T) {
	s := NewSplitter(2000, 200)

	text := strings.Repeat("a", 2000)
	chunks := s.Split([]string{text})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for text at the limit, got %d", len(chunks))
	}
	if len([]rune(chunks[0].Text)) != 2000 {
		t.Fatalf("expected chunk of 2000 runes, got %d", len([]rune(chunks[0].Text)))
	}
}

func TestSplitLongPageThreeChunks(t *testing.T) {
	s := NewSplitter(2000, 200)

	text := strings.Repeat("a", 4500)
	chunks := s.Split([]string{text})
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 4500 runes, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c.Text)); n > 2000 {
			t.Fatalf("chunk %d exceeds limit: %d runes", i, n)
		}
		if c.Page != 1 {
			t.Fatalf("chunk %d has page %d, want 1", i, c.Page)
		}
	}
}

func TestSplitOverlapRepeatsTail(t *testing.T) {
	s := NewSplitter(100, 20)

	text := strings.Repeat("a", 250)
	chunks := s.Split([]string{text})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		tail := string(prev[len(prev)-20:])
		if !strings.HasPrefix(chunks[i].Text, tail) {
			t.Fatalf("chunk %d does not start with the previous tail", i)
		}
	}
}

func TestSplitBacksOffToWordBoundary(t *testing.T) {
	s := NewSplitter(20, 5)

	chunks := s.Split([]string{"alpha beta gamma delta epsilon zeta"})
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if strings.HasSuffix(c.Text, " ") || strings.HasPrefix(c.Text, " ") {
			t.Fatalf("chunk %d not trimmed: %q", i, c.Text)
		}
	}
	// cuts land on spaces, so every chunk before the last ends on a whole word
	words := map[string]bool{"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true, "zeta": true}
	for i := 0; i < len(chunks)-1; i++ {
		fields := strings.Fields(chunks[i].Text)
		if last := fields[len(fields)-1]; !words[last] {
			t.Fatalf("chunk %d ends mid-word: %q", i, last)
		}
	}
}

func TestSplitSkipsEmptyPages(t *testing.T) {
	s := NewSplitter(2000, 200)

	chunks := s.Split([]string{"first page", "", "   ", "fourth page"})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Page != 1 {
		t.Fatalf("first chunk page = %d, want 1", chunks[0].Page)
	}
	if chunks[1].Page != 4 {
		t.Fatalf("second chunk page = %d, want 4", chunks[1].Page)
	}
}

func TestSplitPageOrderPreserved(t *testing.T) {
	s := NewSplitter(100, 10)

	pages := []string{strings.Repeat("a", 250), strings.Repeat("b", 150)}
	chunks := s.Split(pages)
	lastPage := 0
	for i, c := range chunks {
		if c.Page < lastPage {
			t.Fatalf("chunk %d out of page order: page %d after %d", i, c.Page, lastPage)
		}
		lastPage = c.Page
	}
	if lastPage != 2 {
		t.Fatalf("expected chunks from both pages, last page = %d", lastPage)
	}
}

func TestNewSplitterGuardsOverlap(t *testing.T) {
	s := NewSplitter(100, 200)
	if s.OverlapChars >= s.MaxChunkChars {
		t.Fatalf("overlap %d not reduced below max %d", s.OverlapChars, s.MaxChunkChars)
	}

	s = NewSplitter(0, -1)
	if s.MaxChunkChars != DefaultMaxChunkChars {
		t.Fatalf("expected default max, got %d", s.MaxChunkChars)
	}
	if s.OverlapChars != 0 {
		t.Fatalf("expected overlap 0, got %d", s.OverlapChars)
	}
}
