// Package segment provides text sanitization and chunking for indexing.
package segment

import (
	"strings"
	"unicode"
)

// Sanitize normalizes externally-sourced text before chunking or embedding.
// Control bytes other than tab, newline, and carriage return are dropped
// (scraped or OCR'd text often carries invisible control characters that break
// downstream JSON encoding). Runs of horizontal whitespace collapse to a single
// space; CRLF becomes LF; runs of three or more newlines collapse to a blank
// line so paragraph boundaries survive for the splitter. The result is trimmed.
func Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	var space, newlines int
	flush := func() {
		if newlines >= 2 {
			b.WriteString("\n\n")
		} else if newlines == 1 {
			b.WriteByte('\n')
		} else if space > 0 {
			b.WriteByte(' ')
		}
		space, newlines = 0, 0
	}
	for _, r := range text {
		switch {
		case r == '\n':
			newlines++
		case r == '\r':
			// CRLF folds into the following newline; a bare CR is dropped
		case r == '\t' || r == ' ':
			space++
		case unicode.IsControl(r) || !unicode.IsPrint(r):
			// drop invisible bytes without inserting a separator
		default:
			flush()
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
