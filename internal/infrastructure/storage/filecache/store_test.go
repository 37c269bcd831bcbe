package filecache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/civicboard/docqa/internal/core/domain"
)

type fakeRepo struct {
	attachments map[string]*domain.Attachment
}

func (f *fakeRepo) Create(ctx context.Context, att *domain.Attachment) error {
	f.attachments[att.ID] = att
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	att, ok := f.attachments[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrAttachmentNotFound, "get attachment", errors.New(id))
	}
	return att, nil
}

func newRepo(attachments ...*domain.Attachment) *fakeRepo {
	repo := &fakeRepo{attachments: make(map[string]*domain.Attachment)}
	for _, att := range attachments {
		repo.attachments[att.ID] = att
	}
	return repo
}

func TestGetPDFReadsStoredFile(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "meeting-7"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "meeting-7", "agenda.pdf"), []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	store, err := New(newRepo(&domain.Attachment{ID: "att-1", StoragePath: "meeting-7/agenda.pdf"}), base)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	data, err := store.GetPDF(context.Background(), "att-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "%PDF-1.7" {
		t.Fatalf("unexpected data: %q", data)
	}
}

func TestGetPDFUnknownAttachment(t *testing.T) {
	store, err := New(newRepo(), t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	_, err = store.GetPDF(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAttachmentNotFound) {
		t.Fatalf("expected ErrAttachmentNotFound, got %v", err)
	}
}

func TestGetPDFMissingFile(t *testing.T) {
	store, err := New(newRepo(&domain.Attachment{ID: "att-1", StoragePath: "gone.pdf"}), t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	_, err = store.GetPDF(context.Background(), "att-1")
	if !errors.Is(err, domain.ErrAttachmentNotFound) {
		t.Fatalf("expected ErrAttachmentNotFound, got %v", err)
	}
}

func TestGetPDFRejectsPathEscape(t *testing.T) {
	for _, path := range []string{"../outside.pdf", "/etc/passwd", "a/../../outside.pdf"} {
		store, err := New(newRepo(&domain.Attachment{ID: "att-1", StoragePath: path}), t.TempDir())
		if err != nil {
			t.Fatalf("new store: %v", err)
		}

		_, err = store.GetPDF(context.Background(), "att-1")
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("path %q: expected ErrInvalidInput, got %v", path, err)
		}
	}
}
