package domain

import "time"

// ExtractedDocument is the page-level plain text of a PDF attachment.
type ExtractedDocument struct {
	// FullText is all pages joined with a blank line. Informational only;
	// chunking works from Pages.
	FullText string
	// Pages[i] holds the text of page i+1. A blank or image-only page keeps
	// its slot as an empty string so page attribution never shifts.
	Pages []string
}

// TextChunk is the unit of embedding and retrieval.
type TextChunk struct {
	Text string `json:"text"`
	// Page is the 1-indexed source page, 0 when unknown.
	Page int `json:"page,omitempty"`
}

// EmbeddedChunk pairs a chunk with its embedding vector. Vectors are
// opaque to the core; dimensionality is whatever the embedding model
// produces.
type EmbeddedChunk struct {
	TextChunk
	Vector []float32 `json:"-"`
}

// Passage is a retrieved chunk as exposed to callers. The similarity
// score is internal and deliberately stripped.
type Passage struct {
	Text string `json:"text"`
	Page int    `json:"page,omitempty"`
}

// Attachment is the metadata record for a mirrored meeting document.
type Attachment struct {
	ID          string    `json:"id"`
	MeetingID   string    `json:"meeting_id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}
