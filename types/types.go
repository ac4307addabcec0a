package types

import (
	"time"

	"github.com/google/uuid"
)

// Author marks who produced a chat message.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Document is a single ingested privacy policy and its metadata.
// Immutable after creation except Title (rename) and deletion.
type Document struct {
	ID         uuid.UUID
	Title      string
	Source     string // "text" or "url"
	SourcePath string // URL when Source == "url", empty otherwise
	PolicyText string
	CreatedAt  time.Time
}

// Chunk is a bounded slice of a document's text with its embedding.
// Score is only populated on chunks returned from a similarity search.
type Chunk struct {
	ID        uuid.UUID
	DocID     uuid.UUID
	Index     int
	Content   string
	Embedding []float32
	Score     float64
}

// LegalChunk is a fragment of a regulation reference text (GDPR, CCPA, ...).
// Stored in its own collection and retrieved the same way as document chunks.
type LegalChunk struct {
	ID         uuid.UUID
	Regulation string
	SourceFile string
	Index      int
	Content    string
	Embedding  []float32
	Score      float64
}

// ChatMessage is one entry of a document's append-only chat log.
type ChatMessage struct {
	ID        int64     `json:"id"`
	DocID     uuid.UUID `json:"doc_id"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// WebResult is one hit returned by the web-search collaborator.
type WebResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// DocumentSummary is the list view of an analyzed document.
type DocumentSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	RiskScore int       `json:"risk_score"`
	CreatedAt time.Time `json:"created_at"`
}
