// Package generate wraps the language-model service. The Generator never
// returns an error to its caller: quota and transport failures become fixed,
// displayable messages so the query path always has something to show.
package generate

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Fixed user-facing fallback messages.
const (
	MsgQuotaExceeded = "Daily AI usage limit reached. Please try again later."
	MsgUnavailable   = "The AI service is temporarily unavailable. Please try again later."
	MsgNoResponse    = "The AI could not generate a response for this query."
)

// ErrQuotaExceeded is returned by a Completer when the model service reports
// a rate-limit or daily-quota signal.
var ErrQuotaExceeded = errors.New("model quota exceeded")

// Completer performs the raw model call: one prompt string in, free text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator assembles prompts and converts every failure into a fallback
// answer string.
type Generator struct {
	completer Completer
	logger    *zap.Logger
}

// NewGenerator creates a generator around the given model client.
func NewGenerator(c Completer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{completer: c, logger: logger}
}

// Generate produces an answer from the system prompt, retrieved context, and
// question. It never fails: quota errors yield MsgQuotaExceeded, any other
// error MsgUnavailable, and a well-formed empty response MsgNoResponse.
func (g *Generator) Generate(ctx context.Context, systemPrompt, contextBlock, question string) string {
	text, err := g.completer.Complete(ctx, BuildPrompt(systemPrompt, contextBlock, question))
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			g.logger.Warn("model quota exceeded")
			return MsgQuotaExceeded
		}
		g.logger.Warn("model call failed", zap.Error(err))
		return MsgUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return MsgNoResponse
	}
	return text
}

// BuildPrompt composes the single prompt string sent to the model:
// system instructions, a context block, and the question.
func BuildPrompt(systemPrompt, contextBlock, question string) string {
	if strings.TrimSpace(contextBlock) == "" {
		contextBlock = "No relevant context found."
	}
	var b strings.Builder
	b.WriteString(strings.TrimSpace(systemPrompt))
	b.WriteString("\n\nContext:\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	return b.String()
}
