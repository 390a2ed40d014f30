package mock

import (
	"context"

	"github.com/sitedex/sitedex"
)

var _ sitedex.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of sitedex.Embedder.
type Embedder struct {
	LoadFn       func(ctx context.Context) error
	EmbedTextsFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (e *Embedder) Load(ctx context.Context) error {
	if e.LoadFn == nil {
		return nil
	}
	return e.LoadFn(ctx)
}

func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedTextsFn(ctx, texts)
}

var _ sitedex.VectorStore = (*VectorStore)(nil)

// VectorStore is a mock implementation of sitedex.VectorStore.
type VectorStore struct {
	EnsureCollectionFn func(ctx context.Context, name string) error
	UpsertVectorsFn    func(ctx context.Context, records []*sitedex.VectorRecord) error
	SearchFn           func(ctx context.Context, query []float32, opts sitedex.SearchOptions) ([]sitedex.SearchResult, error)
}

func (s *VectorStore) EnsureCollection(ctx context.Context, name string) error {
	if s.EnsureCollectionFn == nil {
		return nil
	}
	return s.EnsureCollectionFn(ctx, name)
}

func (s *VectorStore) UpsertVectors(ctx context.Context, records []*sitedex.VectorRecord) error {
	return s.UpsertVectorsFn(ctx, records)
}

func (s *VectorStore) Search(ctx context.Context, query []float32, opts sitedex.SearchOptions) ([]sitedex.SearchResult, error) {
	return s.SearchFn(ctx, query, opts)
}

var _ sitedex.VectorIndexer = (*VectorIndexer)(nil)

// VectorIndexer is a mock implementation of sitedex.VectorIndexer.
type VectorIndexer struct {
	LoadModelFn        func(ctx context.Context) error
	EnsureCollectionFn func(ctx context.Context, name string) error
	EmbedAndIndexFn    func(ctx context.Context, collection, domain, pageName, pageURL string, chunks []sitedex.Chunk) error
}

func (i *VectorIndexer) LoadModel(ctx context.Context) error {
	if i.LoadModelFn == nil {
		return nil
	}
	return i.LoadModelFn(ctx)
}

func (i *VectorIndexer) EnsureCollection(ctx context.Context, name string) error {
	if i.EnsureCollectionFn == nil {
		return nil
	}
	return i.EnsureCollectionFn(ctx, name)
}

func (i *VectorIndexer) EmbedAndIndex(ctx context.Context, collection, domain, pageName, pageURL string, chunks []sitedex.Chunk) error {
	return i.EmbedAndIndexFn(ctx, collection, domain, pageName, pageURL, chunks)
}
