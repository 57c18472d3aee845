// Package embedding converts text into fixed-dimension vectors. Two
// interchangeable strategies exist behind the same interface: a deterministic
// hash stub for offline use and an OpenAI-backed embedder. The strategy is
// chosen once at construction; indexing and querying must share it, since
// vectors from different strategies are not comparable.
package embedding

import (
	"context"
	"errors"
	"unicode/utf8"
)

// MaxInputChars caps the text sent to the embedding service per call.
const MaxInputChars = 7000

var (
	// ErrUnavailable indicates the embedding service could not be reached.
	ErrUnavailable = errors.New("embedding service unavailable")
	// ErrEmptyText indicates the sanitized input had no embeddable content.
	ErrEmptyText = errors.New("no text to embed")
)

// capInput truncates text to MaxInputChars bytes without splitting a
// multi-byte rune.
func capInput(text string) string {
	if len(text) <= MaxInputChars {
		return text
	}
	cut := MaxInputChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// Embedder produces a vector of fixed dimension for a text.
type Embedder interface {
	// Embed returns the vector for text. Fails with ErrEmptyText when the
	// input is empty after trimming, or ErrUnavailable on transport errors.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Dimensions reports the vector length this strategy produces. The
	// collection must be created with exactly this dimension.
	Dimensions() int
	// Name identifies the strategy ("hash", "openai").
	Name() string
}
