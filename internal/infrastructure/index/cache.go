package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/civicboard/docqa/internal/core/domain"
	"github.com/civicboard/docqa/internal/core/ports"
)

const DefaultTTL = 10 * time.Minute

// Observer receives cache facts for metrics. All methods must be cheap;
// a nil Observer disables observation.
type Observer interface {
	IndexLookup(outcome string)
	IndexBuild(duration time.Duration, chunks int, err error)
}

// Cache holds per-attachment embedded chunk lists with a fixed TTL.
// An entry is immutable once published and is superseded wholesale on
// the first access after expiry; nothing evicts entries proactively,
// which trades bounded growth for simplicity at dashboard scale.
type Cache struct {
	files     ports.FileStore
	extractor ports.PageExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	ttl       time.Duration
	observer  Observer

	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
	flight  singleflight.Group
}

type entry struct {
	chunks    []domain.EmbeddedChunk
	expiresAt time.Time
}

func NewCache(
	files ports.FileStore,
	extractor ports.PageExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	ttl time.Duration,
	observer Observer,
) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		files:     files,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		ttl:       ttl,
		observer:  observer,
		now:       time.Now,
		entries:   make(map[string]entry),
	}
}

// ChunksWithEmbeddings returns the embedded chunk list for an
// attachment, building it on first access and rebuilding once the TTL
// has elapsed. Concurrent misses for the same id collapse into one
// in-flight build. Callers must treat the returned slice as read-only.
func (c *Cache) ChunksWithEmbeddings(ctx context.Context, attachmentID string) ([]domain.EmbeddedChunk, error) {
	if chunks, ok := c.lookup(attachmentID); ok {
		c.observe("hit")
		return chunks, nil
	}
	c.observe("miss")

	result, err, _ := c.flight.Do(attachmentID, func() (any, error) {
		// A queued caller may arrive after the winner already published.
		if chunks, ok := c.lookup(attachmentID); ok {
			return chunks, nil
		}
		return c.rebuild(ctx, attachmentID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.EmbeddedChunk), nil
}

func (c *Cache) lookup(attachmentID string) ([]domain.EmbeddedChunk, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[attachmentID]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.chunks, true
}

// rebuild runs the full pipeline: fetch bytes, extract pages, chunk,
// embed the whole batch in one call, publish. Any failure leaves the
// previous entry (stale or not) untouched.
func (c *Cache) rebuild(ctx context.Context, attachmentID string) ([]domain.EmbeddedChunk, error) {
	start := c.now()

	embedded, err := c.build(ctx, attachmentID)
	if c.observer != nil {
		c.observer.IndexBuild(c.now().Sub(start), len(embedded), err)
	}
	if err != nil {
		return nil, err
	}

	if len(embedded) == 0 {
		// An empty document is an expected state, not a failure. No entry is
		// stored, so the next access re-checks the source.
		return []domain.EmbeddedChunk{}, nil
	}

	c.mu.Lock()
	c.entries[attachmentID] = entry{
		chunks:    embedded,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
	return embedded, nil
}

func (c *Cache) build(ctx context.Context, attachmentID string) ([]domain.EmbeddedChunk, error) {
	data, err := c.files.GetPDF(ctx, attachmentID)
	if err != nil {
		return nil, fmt.Errorf("fetch pdf: %w", err)
	}

	doc, err := c.extractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}

	chunks := c.chunker.Split(doc.Pages)
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, domain.WrapError(
			domain.ErrEmbedding,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}

	embedded := make([]domain.EmbeddedChunk, len(chunks))
	for i := range chunks {
		embedded[i] = domain.EmbeddedChunk{TextChunk: chunks[i], Vector: vectors[i]}
	}
	return embedded, nil
}

func (c *Cache) observe(outcome string) {
	if c.observer != nil {
		c.observer.IndexLookup(outcome)
	}
}
