package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store using brute-force cosine search. Used in
// tests and for offline runs without a Qdrant server. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	points    map[uint64]Point
}

// NewMemoryStore returns an empty in-memory store. The collection "exists"
// once EnsureCollection has been called.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// EnsureCollection records the dimension on first call and rejects a
// different dimension afterwards.
func (m *MemoryStore) EnsureCollection(_ context.Context, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.points == nil {
		m.dimension = dimension
		m.points = make(map[uint64]Point)
		return nil
	}
	if m.dimension != dimension {
		return ErrDimensionMismatch
	}
	return nil
}

// Upsert inserts or replaces points by ID.
func (m *MemoryStore) Upsert(_ context.Context, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.points == nil {
		return ErrUnavailable
	}
	for _, p := range points {
		if len(p.Vector) != m.dimension {
			return ErrDimensionMismatch
		}
		vec := make([]float32, len(p.Vector))
		copy(vec, p.Vector)
		p.Vector = vec
		m.points[p.ID] = p
	}
	return nil
}

// DeleteBySource removes all points of one source.
func (m *MemoryStore) DeleteBySource(_ context.Context, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.points {
		if p.Source == source {
			delete(m.points, id)
		}
	}
	return nil
}

// Search returns up to k hits by cosine similarity, best first. An absent or
// empty collection yields an empty result.
func (m *MemoryStore) Search(_ context.Context, vector []float32, k int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.points == nil || len(m.points) == 0 || k <= 0 {
		return nil, nil
	}
	hits := make([]Hit, 0, len(m.points))
	for _, p := range m.points {
		hits = append(hits, Hit{
			Text:       p.Text,
			Source:     p.Source,
			ChunkIndex: p.ChunkIndex,
			Score:      cosine(vector, p.Vector),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Stats reports existence and point count.
func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.points == nil {
		return Stats{}, nil
	}
	return Stats{Exists: true, PointCount: uint64(len(m.points))}, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
