// Package models defines core data structures for chunks, sources, and query results.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Query modes. Strict answers only from indexed context; hybrid may add
// general knowledge on top of it.
const (
	ModeStrict = "strict"
	ModeHybrid = "hybrid"
)

// Source kinds recorded in the registry.
const (
	SourceKindFile    = "file"
	SourceKindText    = "text"
	SourceKindWebsite = "website"
	SourceKindWatch   = "watch"
)

// Chunk is a contiguous slice of a source's text, the unit of embedding and
// retrieval. ChunkIndex is 0-based and contiguous within a source.
type Chunk struct {
	Text       string    `json:"text"`
	Source     string    `json:"source"`
	ChunkIndex int       `json:"chunk_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// Source describes a registered document, page, or paste.
type Source struct {
	ID        string    `json:"id" db:"id"`
	Kind      string    `json:"kind" db:"kind"`
	Chunks    int       `json:"chunks" db:"chunks"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// QueryRequest is the body of a query call.
type QueryRequest struct {
	Question string `json:"question"`
	Mode     string `json:"mode,omitempty"`
}

// Validate checks the question and normalizes the mode (default hybrid).
func (q *QueryRequest) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question cannot be empty")
	}
	switch q.Mode {
	case "":
		q.Mode = ModeHybrid
	case ModeStrict, ModeHybrid:
	default:
		return fmt.Errorf("unknown mode %q (use %q or %q)", q.Mode, ModeStrict, ModeHybrid)
	}
	return nil
}

// QueryResult is the answer to a question with its attributed sources.
// Sources are deduplicated, ordered by first appearance among ranked hits.
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// IndexRequest is the body of a raw text ingestion call.
type IndexRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// IndexResult reports a completed ingestion.
type IndexResult struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}

// WebsiteRequest is the body of a website ingestion call.
type WebsiteRequest struct {
	URL string `json:"url"`
}
