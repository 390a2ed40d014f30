// Package gemini provides an embedding model backed by the Google Gemini API.
package gemini

import (
	"context"
	"sync"

	"github.com/sitedex/sitedex"
	"google.golang.org/genai"
)

const defaultModel = "gemini-embedding-001"

// Ensure Embedder implements sitedex.Embedder at compile time.
var _ sitedex.Embedder = (*Embedder)(nil)

// Embedder implements sitedex.Embedder using the Gemini embedding API. The
// client is created lazily on first Load so that constructing the Embedder
// never touches the network.
type Embedder struct {
	apiKey string
	model  string

	loadOnce sync.Once
	loadErr  error
	client   *genai.Client
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithModel overrides the embedding model name.
func WithModel(model string) EmbedderOption {
	return func(e *Embedder) {
		e.model = model
	}
}

// NewEmbedder creates a new Embedder.
func NewEmbedder(apiKey string, opts ...EmbedderOption) *Embedder {
	e := &Embedder{apiKey: apiKey, model: defaultModel}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load creates the API client. Repeated calls return the result of the first
// attempt.
func (e *Embedder) Load(ctx context.Context) error {
	e.loadOnce.Do(func() {
		if e.apiKey == "" {
			e.loadErr = sitedex.Errorf(sitedex.EINVALID, "gemini API key required")
			return
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  e.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			e.loadErr = sitedex.Errorf(sitedex.EUNAVAILABLE, "failed to create gemini client: %v", err)
			return
		}
		e.client = client
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

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		}
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, sitedex.Errorf(sitedex.EUNAVAILABLE, "gemini embedding failed: %v", err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, sitedex.Errorf(sitedex.EINTERNAL, "gemini returned %d embeddings for %d texts",
			embeddingCount(result), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, embedding := range result.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, sitedex.Errorf(sitedex.EINTERNAL, "gemini returned empty embedding at index %d", i)
		}
		vectors[i] = embedding.Values
	}

	return vectors, nil
}

func embeddingCount(r *genai.EmbedContentResponse) int {
	if r == nil {
		return 0
	}
	return len(r.Embeddings)
}
