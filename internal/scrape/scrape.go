// Package scrape fetches a web page and extracts its readable text for
// ingestion.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMinTextChars = 100
	maxBodyBytes        = 10 << 20
)

// Scraper fetches pages over HTTP and strips them to plain text.
type Scraper struct {
	client       *http.Client
	minTextChars int
}

// New creates a scraper. Zero values fall back to a 30s timeout and a
// 100-character minimum.
func New(timeout time.Duration, minTextChars int) *Scraper {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if minTextChars <= 0 {
		minTextChars = defaultMinTextChars
	}
	return &Scraper{
		client:       &http.Client{Timeout: timeout},
		minTextChars: minTextChars,
	}
}

// Fetch downloads the page at rawURL and returns its readable text. Pages
// with less readable text than the minimum are rejected: they are almost
// always script-rendered shells with nothing worth indexing.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "kotae/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", u.Host, resp.StatusCode)
	}

	text := ExtractText(io.LimitReader(resp.Body, maxBodyBytes))
	if len(text) < s.minTextChars {
		return "", fmt.Errorf("page %s has too little readable text (%d chars); it may require JavaScript rendering", u.Host, len(text))
	}
	return text, nil
}

// ExtractText tokenizes HTML and concatenates the visible text, skipping
// script, style, and markup metadata.
func ExtractText(r io.Reader) string {
	z := html.NewTokenizer(r)
	var b strings.Builder
	skipDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if skippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(text)
		}
	}
}

func skippedTag(name string) bool {
	switch name {
	case "script", "style", "noscript", "iframe", "head", "svg":
		return true
	}
	return false
}
