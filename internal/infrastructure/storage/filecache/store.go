package filecache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/civicboard/docqa/internal/core/domain"
	"github.com/civicboard/docqa/internal/core/ports"
)

// Store serves PDF bytes out of the dashboard's local file cache,
// resolving attachment ids through the metadata repository.
type Store struct {
	repo     ports.AttachmentRepository
	basePath string
}

func New(repo ports.AttachmentRepository, basePath string) (*Store, error) {
	if basePath == "" {
		basePath = "./data/files"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create file cache dir: %w", err)
	}
	return &Store{repo: repo, basePath: basePath}, nil
}

func (s *Store) GetPDF(ctx context.Context, attachmentID string) ([]byte, error) {
	att, err := s.repo.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}

	rel := filepath.Clean(att.StoragePath)
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read pdf",
			fmt.Errorf("storage path escapes cache root: %s", att.StoragePath))
	}

	data, err := os.ReadFile(filepath.Join(s.basePath, rel))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrAttachmentNotFound, "read pdf",
				fmt.Errorf("file missing for attachment %s", attachmentID))
		}
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return data, nil
}
