package ports

import (
	"context"

	"github.com/civicboard/docqa/internal/core/domain"
)

// AttachmentRepository reads and writes attachment metadata mirrored
// from the meetings API.
type AttachmentRepository interface {
	Create(ctx context.Context, att *domain.Attachment) error
	GetByID(ctx context.Context, id string) (*domain.Attachment, error)
}

// FileStore resolves an attachment id to its raw PDF bytes.
type FileStore interface {
	GetPDF(ctx context.Context, attachmentID string) ([]byte, error)
}

// PageExtractor converts PDF bytes into per-page plain text.
type PageExtractor interface {
	Extract(data []byte) (domain.ExtractedDocument, error)
}

// Chunker splits per-page text into bounded overlapping chunks.
type Chunker interface {
	Split(pages []string) []domain.TextChunk
}

// Embedder builds vectors for chunk batches and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// CompletionClient produces the final answer text from a message list.
type CompletionClient interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// ChunkIndex owns the per-attachment embedded chunk lists. An empty
// result means the document has no extractable text; it is not an error.
type ChunkIndex interface {
	ChunksWithEmbeddings(ctx context.Context, attachmentID string) ([]domain.EmbeddedChunk, error)
}

// MessageQueue publishes/consumes attachment sync events.
type MessageQueue interface {
	PublishAttachmentSynced(ctx context.Context, attachmentID string) error
	SubscribeAttachmentSynced(ctx context.Context, handler func(context.Context, string) error) error
}
