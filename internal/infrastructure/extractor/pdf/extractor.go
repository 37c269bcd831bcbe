package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/civicboard/docqa/internal/core/domain"
)

// Extractor reads per-page plain text out of a PDF byte buffer. It is a
// pure function over its input: no disk, no network.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(data []byte) (doc domain.ExtractedDocument, err error) {
	// The pdf library panics on some malformed inputs; fold those into the
	// same typed parse error as a returned failure.
	defer func() {
		if r := recover(); r != nil {
			doc = domain.ExtractedDocument{}
			err = domain.WrapError(domain.ErrDocumentParse, "extract pdf", fmt.Errorf("parser panic: %v", r))
		}
	}()

	reader, readerErr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if readerErr != nil {
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrDocumentParse, "extract pdf", readerErr)
	}

	pageCount := reader.NumPage()
	pages := make([]string, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			// One unreadable page keeps its empty slot; attribution for the
			// remaining pages must not shift.
			continue
		}
		pages[i-1] = text
	}

	return domain.ExtractedDocument{
		FullText: strings.Join(pages, "\n\n"),
		Pages:    pages,
	}, nil
}
