package index

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/civicboard/docqa/internal/core/domain"
)

type fakeFileStore struct {
	data []byte
	err  error
}

func (f *fakeFileStore) GetPDF(ctx context.Context, attachmentID string) ([]byte, error) {
	return f.data, f.err
}

type fakeExtractor struct {
	doc domain.ExtractedDocument
	err error
}

func (f *fakeExtractor) Extract(data []byte) (domain.ExtractedDocument, error) {
	return f.doc, f.err
}

type fakeChunker struct {
	chunks []domain.TextChunk
}

func (f *fakeChunker) Split(pages []string) []domain.TextChunk {
	return f.chunks
}

type fakeEmbedder struct {
	calls   int
	vectors [][]float32
	err     error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.vectors != nil {
		return f.vectors, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func newTestCache(embedder *fakeEmbedder) *Cache {
	return NewCache(
		&fakeFileStore{data: []byte("pdf-bytes")},
		&fakeExtractor{doc: domain.ExtractedDocument{Pages: []string{"some text"}}},
		&fakeChunker{chunks: []domain.TextChunk{{Text: "some text", Page: 1}}},
		embedder,
		10*time.Minute,
		nil,
	)
}

func TestChunksWithEmbeddingsCachesWithinTTL(t *testing.T) {
	embedder := &fakeEmbedder{}
	cache := newTestCache(embedder)

	first, err := cache.ChunksWithEmbeddings(context.Background(), "att-1")
	if err != nil {
		t.Fatalf("first access: %v", err)
	}
	second, err := cache.ChunksWithEmbeddings(context.Background(), "att-1")
	if err != nil {
		t.Fatalf("second access: %v", err)
	}

	if embedder.calls != 1 {
		t.Fatalf("expected 1 embed call, got %d", embedder.calls)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected 1 chunk from both accesses, got %d and %d", len(first), len(second))
	}
	if second[0].Text != "some text" || second[0].Page != 1 {
		t.Fatalf("unexpected cached chunk: %+v", second[0])
	}
}

func TestChunksWithEmbeddingsRebuildsAfterTTL(t *testing.T) {
	embedder := &fakeEmbedder{}
	cache := newTestCache(embedder)

	current := time.Now()
	cache.now = func() time.Time { return current }

	if _, err := cache.ChunksWithEmbeddings(context.Background(), "att-1"); err != nil {
		t.Fatalf("first access: %v", err)
	}
	current = current.Add(10*time.Minute + time.Second)
	if _, err := cache.ChunksWithEmbeddings(context.Background(), "att-1"); err != nil {
		t.Fatalf("second access: %v", err)
	}

	if embedder.calls != 2 {
		t.Fatalf("expected rebuild after ttl, embed calls = %d", embedder.calls)
	}
}

func TestChunksWithEmbeddingsEmptyDocument(t *testing.T) {
	embedder := &fakeEmbedder{}
	cache := NewCache(
		&fakeFileStore{data: []byte("pdf-bytes")},
		&fakeExtractor{doc: domain.ExtractedDocument{Pages: []string{""}}},
		&fakeChunker{chunks: nil},
		embedder,
		10*time.Minute,
		nil,
	)

	chunks, err := cache.ChunksWithEmbeddings(context.Background(), "att-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
	if embedder.calls != 0 {
		t.Fatalf("expected no embed call for an empty document, got %d", embedder.calls)
	}

	// no entry stored, so a later access re-runs the pipeline
	if _, err := cache.ChunksWithEmbeddings(context.Background(), "att-1"); err != nil {
		t.Fatalf("second access: %v", err)
	}
}

func TestChunksWithEmbeddingsEmbedFailure(t *testing.T) {
	embedErr := domain.WrapError(domain.ErrEmbedding, "embed chunks", errors.New("upstream down"))
	embedder := &fakeEmbedder{err: embedErr}
	cache := newTestCache(embedder)

	_, err := cache.ChunksWithEmbeddings(context.Background(), "att-1")
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}

	// the failure stores nothing; recovery on the next access works
	embedder.err = nil
	chunks, err := cache.ChunksWithEmbeddings(context.Background(), "att-1")
	if err != nil {
		t.Fatalf("access after recovery: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk after recovery, got %d", len(chunks))
	}
}

func TestChunksWithEmbeddingsVectorCountMismatch(t *testing.T) {
	embedder := &fakeEmbedder{vectors: [][]float32{{1, 0}, {0, 1}}}
	cache := newTestCache(embedder)

	_, err := cache.ChunksWithEmbeddings(context.Background(), "att-1")
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding on count mismatch, got %v", err)
	}
}

type blockingEmbedder struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (b *blockingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.entered <- struct{}{}
	<-b.release

	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (b *blockingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func TestChunksWithEmbeddingsConcurrentMissesCollapse(t *testing.T) {
	embedder := &blockingEmbedder{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	cache := NewCache(
		&fakeFileStore{data: []byte("pdf-bytes")},
		&fakeExtractor{doc: domain.ExtractedDocument{Pages: []string{"some text"}}},
		&fakeChunker{chunks: []domain.TextChunk{{Text: "some text", Page: 1}}},
		embedder,
		10*time.Minute,
		nil,
	)

	var wg sync.WaitGroup
	results := make([]int, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			chunks, err := cache.ChunksWithEmbeddings(context.Background(), "att-1")
			results[i] = len(chunks)
			errs[i] = err
		}(i)
	}

	// one goroutine owns the build; unblock it once it is inside Embed
	<-embedder.entered
	close(embedder.release)
	wg.Wait()

	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i] != 1 {
			t.Fatalf("caller %d got %d chunks, want 1", i, results[i])
		}
	}
	if embedder.calls != 1 {
		t.Fatalf("expected one embed call across concurrent misses, got %d", embedder.calls)
	}
}

func TestChunksWithEmbeddingsFileStoreError(t *testing.T) {
	cache := NewCache(
		&fakeFileStore{err: domain.ErrAttachmentNotFound},
		&fakeExtractor{},
		&fakeChunker{},
		&fakeEmbedder{},
		10*time.Minute,
		nil,
	)

	_, err := cache.ChunksWithEmbeddings(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAttachmentNotFound) {
		t.Fatalf("expected ErrAttachmentNotFound, got %v", err)
	}
}
