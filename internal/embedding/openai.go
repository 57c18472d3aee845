package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultEmbeddingModel = openai.EmbeddingModelTextEmbedding3Small

// OpenAIEmbedder embeds text via the OpenAI embeddings API. Vectors from
// different model versions are not comparable, so the collection dimension is
// pinned to what this strategy reports.
type OpenAIEmbedder struct {
	client     openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// OpenAIConfig configures the service-backed embedder.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // optional, for OpenAI-compatible endpoints
	Model      string // default text-embedding-3-small
	Dimensions int    // default 1536
}

// NewOpenAIEmbedder creates a service-backed embedder.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai embedder: API key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := defaultEmbeddingModel
	if cfg.Model != "" {
		model = openai.EmbeddingModel(cfg.Model)
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = 1536
	}
	return &OpenAIEmbedder{
		client:     openai.NewClient(opts...),
		model:      model,
		dimensions: dims,
	}, nil
}

// Embed returns the embedding for text, capped at MaxInputChars.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	text = capInput(text)
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model:      e.model,
		Dimensions: openai.Int(int64(e.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	if len(vec) != e.dimensions {
		return nil, fmt.Errorf("embedding dimension %d does not match configured %d", len(vec), e.dimensions)
	}
	return vec, nil
}

// Dimensions returns the configured vector length.
func (e *OpenAIEmbedder) Dimensions() int { return e.dimensions }

// Name returns "openai".
func (e *OpenAIEmbedder) Name() string { return "openai" }
