// Package openai provides an embedding model backed by any OpenAI-compatible
// embedding API, including local servers that expose one.
package openai

import (
	"context"
	"sync"

	"github.com/sitedex/sitedex"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Ensure Embedder implements sitedex.Embedder at compile time.
var _ sitedex.Embedder = (*Embedder)(nil)

// Config holds the connection settings for an OpenAI-compatible endpoint.
type Config struct {
	// BaseURL of the API. Empty means the public OpenAI endpoint.
	BaseURL string

	// Token authenticates requests. Local servers usually accept any value.
	Token string

	// Model is the embedding model name, e.g. "text-embedding-3-small".
	Model string
}

// Validate returns an error if the config is incomplete.
func (c *Config) Validate() error {
	if c.Model == "" {
		return sitedex.Errorf(sitedex.EINVALID, "embedding model required")
	}
	return nil
}

// Embedder implements sitedex.Embedder using langchaingo's OpenAI client.
type Embedder struct {
	config Config

	loadOnce sync.Once
	loadErr  error
	embedder embeddings.Embedder
}

// NewEmbedder creates a new Embedder. The underlying client is constructed
// lazily on first Load.
func NewEmbedder(config Config) *Embedder {
	return &Embedder{config: config}
}

// Load builds the underlying client. Repeated calls return the result of the
// first attempt.
func (e *Embedder) Load(ctx context.Context) error {
	e.loadOnce.Do(func() {
		if err := e.config.Validate(); err != nil {
			e.loadErr = err
			return
		}

		token := e.config.Token
		if token == "" {
			// Local OpenAI-compatible services don't check the token but the
			// client requires a non-empty one.
			token = "none"
		}

		opts := []openai.Option{
			openai.WithToken(token),
			openai.WithEmbeddingModel(e.config.Model),
		}
		if e.config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(e.config.BaseURL))
		}

		client, err := openai.New(opts...)
		if err != nil {
			e.loadErr = sitedex.Errorf(sitedex.EUNAVAILABLE, "failed to create openai client: %v", err)
			return
		}

		embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
		if err != nil {
			e.loadErr = sitedex.Errorf(sitedex.EUNAVAILABLE, "failed to create embedder: %v", err)
			return
		}
		e.embedder = embedder
	})
	return e.loadErr
}

// EmbedTexts returns one embedding per input text, in input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.Load(ctx); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, sitedex.Errorf(sitedex.EUNAVAILABLE, "embedding request failed: %v", err)
	}
	if len(vectors) != len(texts) {
		return nil, sitedex.Errorf(sitedex.EINTERNAL, "embedder returned %d vectors for %d texts",
			len(vectors), len(texts))
	}

	return vectors, nil
}
