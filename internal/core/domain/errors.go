package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrDocumentParse      = errors.New("document parse failure")
	ErrNoExtractableText  = errors.New("no extractable text")
	ErrEmptyQuery         = errors.New("empty query")
	ErrEmbedding          = errors.New("embedding failure")
	ErrCompletion         = errors.New("completion failure")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTemporary          = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
