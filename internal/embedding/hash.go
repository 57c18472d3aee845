package embedding

import (
	"context"
	"crypto/sha256"
	"strings"
)

// HashEmbedder is a deterministic embedder: the SHA-256 digest of the text,
// scaled to [0,1] and tiled to the configured dimension. Same text always
// yields the same vector, so retrieval works offline without a model service.
// The vectors carry no semantics beyond exact-content identity.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns a hash embedder of the given dimension (default 64).
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = 64
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed returns the deterministic vector for text.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	digest := sha256.Sum256([]byte(text))
	vec := make([]float32, e.dimensions)
	for i := range vec {
		vec[i] = float32(digest[i%len(digest)]) / 255
	}
	return vec, nil
}

// Dimensions returns the configured vector length.
func (e *HashEmbedder) Dimensions() int { return e.dimensions }

// Name returns "hash".
func (e *HashEmbedder) Name() string { return "hash" }
