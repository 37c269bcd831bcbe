package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicboard/docqa/internal/core/domain"
	"github.com/civicboard/docqa/internal/core/ports"
)

// RegisterUseCase records a synced attachment and announces it on the
// queue so the warm worker can pre-build its index.
type RegisterUseCase struct {
	repo  ports.AttachmentRepository
	queue ports.MessageQueue
}

func NewRegisterUseCase(repo ports.AttachmentRepository, queue ports.MessageQueue) *RegisterUseCase {
	return &RegisterUseCase{repo: repo, queue: queue}
}

func (uc *RegisterUseCase) Register(ctx context.Context, att *domain.Attachment) error {
	if att == nil || att.ID == "" || att.StoragePath == "" {
		return domain.WrapError(domain.ErrInvalidInput, "register attachment",
			errors.New("id and storage_path are required"))
	}
	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now().UTC()
	}

	if err := uc.repo.Create(ctx, att); err != nil {
		return fmt.Errorf("store attachment: %w", err)
	}

	// Warming is advisory. The chat path builds the index lazily, so a
	// lost event costs latency on the first question, not correctness.
	if err := uc.queue.PublishAttachmentSynced(ctx, att.ID); err != nil {
		slog.Warn("attachment_synced_publish_failed", "attachment_id", att.ID, "error", err)
	}
	return nil
}
