package pipeline

import (
	"context"

	"github.com/sitedex/sitedex"
)

// Ensure Searcher implements sitedex.Searcher at compile time.
var _ sitedex.Searcher = (*Searcher)(nil)

// Searcher answers semantic queries by embedding the query text and
// searching the vector store.
type Searcher struct {
	Embedder sitedex.Embedder
	Store    sitedex.VectorStore
}

// Search embeds the query and returns the closest indexed chunks.
func (s *Searcher) Search(ctx context.Context, query string, opts sitedex.SearchOptions) ([]sitedex.SearchResult, error) {
	if query == "" {
		return nil, sitedex.Errorf(sitedex.EINVALID, "query required")
	}
	if opts.Collection == "" {
		return nil, sitedex.Errorf(sitedex.EINVALID, "collection required")
	}

	if err := s.Embedder.Load(ctx); err != nil {
		return nil, err
	}

	vectors, err := s.Embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, sitedex.Errorf(sitedex.EINTERNAL, "embedder returned %d vectors for one query", len(vectors))
	}

	return s.Store.Search(ctx, vectors[0], opts)
}
