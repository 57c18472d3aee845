package segment

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(900, 180)
	text := Sanitize("The quarterly report covers revenue and churn.")
	chunks := s.Split(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("chunk should equal sanitized input: %q != %q", chunks[0], text)
	}
}

func TestSplit_Empty(t *testing.T) {
	s := NewSplitter(900, 180)
	for _, in := range []string{"", "   ", "\n\t\n"} {
		if got := s.Split(in); got != nil {
			t.Errorf("Split(%q) = %v, want nil", in, got)
		}
	}
}

func TestSplit_RespectsChunkSize(t *testing.T) {
	s := NewSplitter(100, 20)
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("alpha beta gamma delta epsilon. ")
	}
	chunks := s.Split(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch) > 100 {
			t.Errorf("chunk %d exceeds size limit: %d bytes", i, len(ch))
		}
	}
}

func TestSplit_AdjacentChunksOverlap(t *testing.T) {
	s := NewSplitter(120, 30)
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("one two three four five six seven eight nine ten ")
	}
	chunks := s.Split(strings.TrimSpace(b.String()))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if overlapLen(chunks[i-1], chunks[i]) == 0 {
			t.Errorf("chunks %d and %d share no span", i-1, i)
		}
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	s := NewSplitter(80, 16)
	text := Sanitize(`First paragraph about storage engines and their trade-offs in practice.

Second paragraph covering replication, consensus, quorums and failure detection.

Third paragraph on compaction, bloom filters, write amplification and caching layers.`)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	rebuilt := chunks[0]
	for i := 1; i < len(chunks); i++ {
		rebuilt += chunks[i][overlapLen(chunks[i-1], chunks[i]):]
	}
	if rebuilt != text {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q", rebuilt, text)
	}
}

func TestSplit_HardCutWithoutSeparators(t *testing.T) {
	s := NewSplitter(50, 10)
	text := strings.Repeat("x", 175)
	chunks := s.Split(text)
	if len(chunks) < 4 {
		t.Fatalf("expected hard-cut chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch) > 50 {
			t.Errorf("chunk %d exceeds size limit: %d", i, len(ch))
		}
	}
}

func TestSplit_MultiByteRunesStayIntact(t *testing.T) {
	s := NewSplitter(100, 33)
	text := strings.TrimSpace(strings.Repeat("日本語のテキストです ", 60))
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if !utf8.ValidString(ch) {
			t.Errorf("chunk %d contains invalid UTF-8: %q", i, ch)
		}
		if len(ch) > 100 {
			t.Errorf("chunk %d exceeds size limit: %d bytes", i, len(ch))
		}
	}
}

func TestSplit_HardCutMultiByte(t *testing.T) {
	// No separators at all, forcing the hard cut through multi-byte runes.
	s := NewSplitter(50, 10)
	text := strings.Repeat("五十音図と漢字", 40)
	for i, ch := range s.Split(text) {
		if !utf8.ValidString(ch) {
			t.Errorf("chunk %d contains invalid UTF-8: %q", i, ch)
		}
		if len(ch) > 50 {
			t.Errorf("chunk %d exceeds size limit: %d bytes", i, len(ch))
		}
	}
}

func TestSplit_MultiByteReconstruction(t *testing.T) {
	s := NewSplitter(90, 18)
	text := strings.TrimSpace(strings.Repeat("café résumé naïveté Übersetzung ", 20))
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	rebuilt := chunks[0]
	for i := 1; i < len(chunks); i++ {
		rebuilt += chunks[i][overlapLen(chunks[i-1], chunks[i]):]
	}
	if rebuilt != text {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q", rebuilt, text)
	}
}

// overlapLen returns the length of the longest prefix of next that is a
// suffix of prev.
func overlapLen(prev, next string) int {
	max := len(next)
	if len(prev) < max {
		max = len(prev)
	}
	for k := max; k > 0; k-- {
		if strings.HasSuffix(prev, next[:k]) {
			return k
		}
	}
	return 0
}
