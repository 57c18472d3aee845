// Package query answers questions against the indexed corpus. The
// orchestrator embeds the question, searches the vector index, assembles
// source-attributed context, selects a prompt by mode and question type, and
// delegates generation. Its outer contract never fails: every path returns a
// displayable answer and a (possibly empty) source list.
package query

import (
	"context"
	"strings"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/generate"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/segment"
	"github.com/hyperjump/kotae/internal/vectorstore"
	"go.uber.org/zap"
)

const defaultTopK = 10

// AnswerGenerator produces an answer from a prompt, context, and question
// without ever failing. Satisfied by *generate.Generator.
type AnswerGenerator interface {
	Generate(ctx context.Context, systemPrompt, contextBlock, question string) string
}

// Orchestrator coordinates retrieval and generation. The embedder must be the
// same instance (and therefore the same strategy) used by the indexing
// pipeline; vectors from different strategies are not comparable.
type Orchestrator struct {
	embedder  embedding.Embedder
	store     vectorstore.Store
	generator AnswerGenerator
	topK      int
	logger    *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTopK overrides the number of chunks retrieved per question.
func WithTopK(k int) Option {
	return func(o *Orchestrator) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithLogger sets a logger for debug events.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(embedder embedding.Embedder, store vectorstore.Store, generator AnswerGenerator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		embedder:  embedder,
		store:     store,
		generator: generator,
		topK:      defaultTopK,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Answer responds to a question in the given mode (strict or hybrid; empty
// defaults to hybrid). It never returns an error: infrastructure failures
// degrade to fixed fallback answers with empty sources.
func (o *Orchestrator) Answer(ctx context.Context, question, mode string) *models.QueryResult {
	strict := mode == models.ModeStrict

	// Strict mode refuses outright when nothing is indexed, before paying
	// for a query embedding or a model call.
	if strict {
		stats, err := o.store.Stats(ctx)
		if err != nil {
			o.logger.Warn("stats check failed", zap.Error(err))
			return fallback()
		}
		if !stats.Exists || stats.PointCount == 0 {
			return refusal()
		}
	}

	// Sanitize the question the same way indexed text is sanitized, so the
	// query vector is built from the same character space as the corpus.
	vector, err := o.embedder.Embed(ctx, segment.Sanitize(question))
	if err != nil {
		o.logger.Warn("question embedding failed", zap.Error(err))
		return fallback()
	}

	hits, err := o.store.Search(ctx, vector, o.topK)
	if err != nil {
		o.logger.Warn("vector search failed", zap.Error(err))
		return fallback()
	}
	if strict && len(hits) == 0 {
		// Non-empty collection, but nothing relevant to this question.
		return refusal()
	}

	contextBlock, sources := assembleContext(hits)
	prompt := selectPrompt(strict, IsDefinitionQuestion(question))
	answer := o.generator.Generate(ctx, prompt, contextBlock, question)

	return &models.QueryResult{Answer: answer, Sources: sources}
}

// assembleContext joins hit texts in ranked order and collects the
// deduplicated, first-seen-ordered source list.
func assembleContext(hits []vectorstore.Hit) (string, []string) {
	texts := make([]string, 0, len(hits))
	sources := make([]string, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		texts = append(texts, h.Text)
		if _, ok := seen[h.Source]; !ok && h.Source != "" {
			seen[h.Source] = struct{}{}
			sources = append(sources, h.Source)
		}
	}
	return strings.Join(texts, "\n"), sources
}

func refusal() *models.QueryResult {
	return &models.QueryResult{Answer: Refusal, Sources: []string{}}
}

func fallback() *models.QueryResult {
	return &models.QueryResult{Answer: generate.MsgUnavailable, Sources: []string{}}
}
