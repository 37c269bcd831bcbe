package chunking

import (
	"strings"

	"github.com/civicboard/docqa/internal/core/domain"
)

const (
	DefaultMaxChunkChars = 2000
	DefaultOverlapChars  = 200
)

// Splitter breaks per-page text into bounded chunks with a trailing
// overlap, so a sentence straddling a boundary survives intact in at
// least one chunk. Lengths are counted in runes.
type Splitter struct {
	MaxChunkChars int
	OverlapChars  int
}

func NewSplitter(maxChunkChars, overlapChars int) *Splitter {
	if maxChunkChars <= 0 {
		maxChunkChars = DefaultMaxChunkChars
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChunkChars {
		overlapChars = maxChunkChars / 10
	}
	return &Splitter{
		MaxChunkChars: maxChunkChars,
		OverlapChars:  overlapChars,
	}
}

// Split returns the chunks of all pages in page order, then within-page
// order. Page numbers are 1-indexed positions in the input slice.
func (s *Splitter) Split(pages []string) []domain.TextChunk {
	var out []domain.TextChunk
	for i, page := range pages {
		out = append(out, s.splitPage(strings.TrimSpace(page), i+1)...)
	}
	return out
}

func (s *Splitter) splitPage(text string, pageNum int) []domain.TextChunk {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= s.MaxChunkChars {
		return []domain.TextChunk{{Text: text, Page: pageNum}}
	}

	var chunks []domain.TextChunk
	start := 0
	for start < len(runes) {
		end := start + s.MaxChunkChars
		if end > len(runes) {
			end = len(runes)
		}
		if end < len(runes) {
			// Back off to the last space so words stay whole. A window with
			// no space at all splits hard at the boundary.
			if cut := lastSpaceWithin(runes, start, end); cut > start {
				end = cut
			}
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, domain.TextChunk{Text: chunk, Page: pageNum})
		}

		if end == len(runes) {
			break
		}
		if end-start > s.OverlapChars {
			start = end - s.OverlapChars
		} else {
			start = end
		}
	}
	return chunks
}

func lastSpaceWithin(runes []rune, start, end int) int {
	for i := end; i > start; i-- {
		if runes[i-1] == ' ' {
			return i - 1
		}
	}
	return -1
}
