package httpadapter

import (
	"net/http"

	"github.com/civicboard/docqa/internal/core/domain"
)

// mapError translates an error kind into a status code and a fixed
// client-facing message. The wrapped chain never reaches the response
// body; writeError logs it instead.
func mapError(err error) (int, string) {
	switch {
	case domain.IsKind(err, domain.ErrEmptyQuery):
		return http.StatusBadRequest, "question must not be empty"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request"
	case domain.IsKind(err, domain.ErrAttachmentNotFound):
		return http.StatusNotFound, "attachment not found"
	case domain.IsKind(err, domain.ErrNoExtractableText):
		return http.StatusUnprocessableEntity, "attachment has no extractable text"
	case domain.IsKind(err, domain.ErrDocumentParse):
		return http.StatusUnprocessableEntity, "attachment could not be parsed"
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	case domain.IsKind(err, domain.ErrEmbedding),
		domain.IsKind(err, domain.ErrCompletion):
		return http.StatusBadGateway, "language model request failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
