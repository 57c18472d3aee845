package segment

import (
	"strings"
	"unicode/utf8"
)

// Separator order for recursive splitting: paragraph breaks, line breaks,
// sentence breaks, spaces, then a hard character cut.
var separators = []string{"\n\n", "\n", ". ", " "}

// Splitter splits sanitized text into overlapping character-bounded chunks.
// It is stateless and safe for concurrent use.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter creates a splitter. chunkSize is the maximum chunk length in
// bytes, overlap the span shared between adjacent chunks. Zero or negative
// values fall back to 900/180; overlap is clamped below chunkSize.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 900
	}
	if overlap < 0 {
		overlap = 180
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split breaks text into chunks of at most chunkSize bytes. Adjacent chunks
// share a trailing/leading span of up to overlap bytes. Text at or under the
// limit yields exactly one chunk; empty or whitespace-only text yields none.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{text}
	}
	return s.merge(s.split(text, 0))
}

// split recursively breaks text into pieces no longer than chunkSize, trying
// the coarsest separator first. Separators stay attached to the preceding
// piece so concatenating all pieces reproduces the input.
func (s *Splitter) split(text string, sepIdx int) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}
	if sepIdx >= len(separators) {
		// No separator left: hard cut on rune boundaries.
		out := make([]string, 0, len(text)/s.chunkSize+1)
		for len(text) > s.chunkSize {
			n := cutAt(text, s.chunkSize)
			out = append(out, text[:n])
			text = text[n:]
		}
		if text != "" {
			out = append(out, text)
		}
		return out
	}
	parts := strings.SplitAfter(text, separators[sepIdx])
	var out []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		if len(p) <= s.chunkSize {
			out = append(out, p)
		} else {
			out = append(out, s.split(p, sepIdx+1)...)
		}
	}
	return out
}

// merge joins pieces into chunks up to chunkSize. When a chunk closes, the
// next one is seeded with the closed chunk's trailing overlap bytes so
// adjacent chunks share a span.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var cur strings.Builder
	seeded := 0 // bytes of overlap seed at the start of cur
	for _, p := range pieces {
		if cur.Len() > seeded && cur.Len()+len(p) > s.chunkSize {
			chunk := cur.String()
			chunks = append(chunks, chunk)
			tail := tailFrom(chunk, s.overlap)
			// Shrink the seed when the next piece alone would overflow.
			if len(tail)+len(p) > s.chunkSize {
				tail = tailFrom(tail, s.chunkSize-len(p))
			}
			cur.Reset()
			cur.WriteString(tail)
			seeded = len(tail)
		}
		cur.WriteString(p)
	}
	if cur.Len() > seeded {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// cutAt returns the largest byte offset not exceeding limit that falls on a
// rune boundary, so slicing at it never splits a multi-byte rune. When even
// the first rune is longer than limit, that rune's length is returned.
func cutAt(text string, limit int) int {
	if limit >= len(text) {
		return len(text)
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	if limit == 0 {
		_, size := utf8.DecodeRuneInString(text)
		return size
	}
	return limit
}

// tailFrom returns a suffix of s at most n bytes long, starting on a rune
// boundary.
func tailFrom(s string, n int) string {
	if n <= 0 {
		return ""
	}
	start := len(s) - n
	if start <= 0 {
		return s
	}
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
