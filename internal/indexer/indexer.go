// Package indexer runs the ingestion pipeline: sanitize, split, embed, and
// store. One Index call processes one logical source (a file, a pasted text,
// or a scraped page).
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/segment"
	"github.com/hyperjump/kotae/internal/vectorstore"
	"go.uber.org/zap"
)

// Indexer turns raw text into embedded points in the vector index. The
// embedder must be the same instance the query side uses so all stored
// vectors live in one space.
type Indexer struct {
	splitter *segment.Splitter
	embedder embedding.Embedder
	store    vectorstore.Store
	logger   *zap.Logger
}

// New creates an indexer.
func New(splitter *segment.Splitter, embedder embedding.Embedder, store vectorstore.Store, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{splitter: splitter, embedder: embedder, store: store, logger: logger}
}

// Index sanitizes and splits text, embeds each chunk, and upserts the points
// under the given source label. It returns the number of chunks stored.
//
// A failure partway through leaves the already-stored chunks in place; the
// caller can retry (same-source re-indexing appends, it does not replace) or
// call Remove to clear the source.
func (ix *Indexer) Index(ctx context.Context, text, source string) (int, error) {
	clean := segment.Sanitize(text)
	chunks := ix.splitter.Split(clean)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("index %q: no indexable text", source)
	}

	if err := ix.store.EnsureCollection(ctx, ix.embedder.Dimensions()); err != nil {
		return 0, fmt.Errorf("index %q: ensure collection: %w", source, err)
	}

	// Nanosecond run timestamp plus ordinal keeps IDs unique across runs
	// without coordination. Same-source re-runs therefore append new points.
	base := uint64(time.Now().UnixNano())
	uploadedAt := time.Now().UTC()

	for i, chunk := range chunks {
		vector, err := ix.embedder.Embed(ctx, chunk)
		if err != nil {
			return i, fmt.Errorf("index %q: embed chunk %d/%d: %w", source, i+1, len(chunks), err)
		}
		point := vectorstore.Point{
			ID:         base + uint64(i),
			Vector:     vector,
			Text:       chunk,
			Source:     source,
			ChunkIndex: i,
			UploadedAt: uploadedAt,
		}
		if err := ix.store.Upsert(ctx, []vectorstore.Point{point}); err != nil {
			return i, fmt.Errorf("index %q: store chunk %d/%d: %w", source, i+1, len(chunks), err)
		}
	}

	ix.logger.Info("indexed source",
		zap.String("source", source),
		zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// Remove deletes every stored chunk belonging to the source.
func (ix *Indexer) Remove(ctx context.Context, source string) error {
	if err := ix.store.DeleteBySource(ctx, source); err != nil {
		return fmt.Errorf("remove %q: %w", source, err)
	}
	ix.logger.Info("removed source", zap.String("source", source))
	return nil
}
