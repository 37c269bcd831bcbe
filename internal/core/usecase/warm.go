package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/civicboard/docqa/internal/core/ports"
)

// WarmUseCase populates the chunk index for freshly synced attachments
// so the first question does not pay the cold-index cost.
type WarmUseCase struct {
	index ports.ChunkIndex
}

func NewWarmUseCase(index ports.ChunkIndex) *WarmUseCase {
	return &WarmUseCase{index: index}
}

func (uc *WarmUseCase) WarmAttachment(ctx context.Context, attachmentID string) error {
	chunks, err := uc.index.ChunksWithEmbeddings(ctx, attachmentID)
	if err != nil {
		return fmt.Errorf("warm attachment %s: %w", attachmentID, err)
	}
	slog.Info("attachment_warmed", "attachment_id", attachmentID, "chunks", len(chunks))
	return nil
}
