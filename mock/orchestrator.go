package mock

import (
	"context"

	"github.com/sitedex/sitedex"
)

var _ sitedex.Orchestrator = (*Orchestrator)(nil)

// Orchestrator is a mock implementation of sitedex.Orchestrator.
type Orchestrator struct {
	StartScrapeFn func(ctx context.Context, req sitedex.ScrapeRequest) (*sitedex.Session, error)
	StartEmbedFn  func(ctx context.Context, sel sitedex.EmbedSelector) (string, error)
}

func (o *Orchestrator) StartScrape(ctx context.Context, req sitedex.ScrapeRequest) (*sitedex.Session, error) {
	return o.StartScrapeFn(ctx, req)
}

func (o *Orchestrator) StartEmbed(ctx context.Context, sel sitedex.EmbedSelector) (string, error) {
	return o.StartEmbedFn(ctx, sel)
}

var _ sitedex.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of sitedex.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string, opts sitedex.SearchOptions) ([]sitedex.SearchResult, error)
}

func (s *Searcher) Search(ctx context.Context, query string, opts sitedex.SearchOptions) ([]sitedex.SearchResult, error) {
	return s.SearchFn(ctx, query, opts)
}
