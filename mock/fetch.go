package mock

import (
	"context"

	"github.com/sitedex/sitedex"
)

var _ sitedex.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of sitedex.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ sitedex.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of sitedex.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL)
}

var _ sitedex.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of sitedex.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*sitedex.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*sitedex.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ sitedex.Converter = (*Converter)(nil)

// Converter is a mock implementation of sitedex.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ sitedex.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of sitedex.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string) ([]sitedex.DiscoveredLink, error)
}

func (l *LinkExtractor) ExtractLinks(html string, baseURL string) ([]sitedex.DiscoveredLink, error) {
	return l.ExtractLinksFn(html, baseURL)
}
