// Package vectorstore defines the gateway to the vector index service and
// provides a Qdrant-backed and an in-memory implementation.
package vectorstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable indicates the index service could not be reached.
	// Indexing surfaces it to the caller; querying converts it to a soft
	// fallback answer instead of failing the request.
	ErrUnavailable = errors.New("vector index unavailable")
	// ErrDimensionMismatch indicates the existing collection was created with
	// a different vector dimension. This is a configuration error; vectors
	// are never padded or truncated to fit.
	ErrDimensionMismatch = errors.New("collection dimension mismatch")
)

// Point is a stored chunk vector with its attribution payload.
type Point struct {
	ID         uint64
	Vector     []float32
	Text       string
	Source     string
	ChunkIndex int
	UploadedAt time.Time
}

// Hit is a single similarity search result, highest similarity first.
type Hit struct {
	Text       string
	Source     string
	ChunkIndex int
	Score      float32
}

// Stats describes the collection state, used for strict-mode pre-checks
// before paying for a query embedding.
type Stats struct {
	Exists     bool
	PointCount uint64
}

// Store is the contract the indexing pipeline and query orchestrator hold
// against the vector index. The collection is appended to by default;
// removal is per-source via DeleteBySource.
type Store interface {
	// EnsureCollection creates the collection with the given dimension and
	// cosine distance if it does not exist. Idempotent; fails with
	// ErrDimensionMismatch when an existing collection differs.
	EnsureCollection(ctx context.Context, dimension int) error
	// Upsert inserts or replaces points by ID. Callers guarantee ID uniqueness.
	Upsert(ctx context.Context, points []Point) error
	// DeleteBySource removes every point whose payload source matches.
	DeleteBySource(ctx context.Context, source string) error
	// Search returns up to k nearest neighbors. An absent or empty collection
	// yields an empty result, not an error.
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)
	// Stats reports whether the collection exists and how many points it holds.
	Stats(ctx context.Context) (Stats, error)
	Close() error
}
