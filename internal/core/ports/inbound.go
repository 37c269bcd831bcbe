package ports

import (
	"context"

	"github.com/civicboard/docqa/internal/core/domain"
)

// DocumentChatService is the inbound contract for grounded question
// answering over a single attachment.
type DocumentChatService interface {
	Answer(ctx context.Context, attachmentID string, history []domain.ChatMessage, question string) (string, error)
}

// IndexWarmer is the inbound contract for pre-populating the embedding
// index ahead of user questions.
type IndexWarmer interface {
	WarmAttachment(ctx context.Context, attachmentID string) error
}

// AttachmentRegistrar is the inbound contract the dashboard mirror uses
// to announce a freshly synced attachment.
type AttachmentRegistrar interface {
	Register(ctx context.Context, att *domain.Attachment) error
}
