package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type stubCompleter struct {
	text string
	err  error
}

func (s *stubCompleter) Complete(context.Context, string) (string, error) {
	return s.text, s.err
}

func TestGenerate_Success(t *testing.T) {
	g := NewGenerator(&stubCompleter{text: "an answer"}, nil)
	got := g.Generate(context.Background(), "sys", "ctx", "q")
	if got != "an answer" {
		t.Errorf("got %q", got)
	}
}

func TestGenerate_QuotaExceeded(t *testing.T) {
	g := NewGenerator(&stubCompleter{err: fmt.Errorf("wrapped: %w", ErrQuotaExceeded)}, nil)
	if got := g.Generate(context.Background(), "sys", "ctx", "q"); got != MsgQuotaExceeded {
		t.Errorf("got %q, want quota message", got)
	}
}

func TestGenerate_TransportFailure(t *testing.T) {
	g := NewGenerator(&stubCompleter{err: errors.New("connection refused")}, nil)
	if got := g.Generate(context.Background(), "sys", "ctx", "q"); got != MsgUnavailable {
		t.Errorf("got %q, want unavailable message", got)
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	g := NewGenerator(&stubCompleter{text: "  \n"}, nil)
	if got := g.Generate(context.Background(), "sys", "ctx", "q"); got != MsgNoResponse {
		t.Errorf("got %q, want no-response message", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("You are helpful.", "chunk one\nchunk two", "What is X?")
	for _, want := range []string{"You are helpful.", "Context:\nchunk one\nchunk two", "Question:\nWhat is X?"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestBuildPrompt_EmptyContext(t *testing.T) {
	p := BuildPrompt("sys", "", "q")
	if !strings.Contains(p, "No relevant context found.") {
		t.Errorf("empty context placeholder missing:\n%s", p)
	}
}
