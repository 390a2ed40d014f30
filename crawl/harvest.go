// Package crawl turns a set of page URLs into normalized page records.
// It coordinates fetching, content extraction and markdown conversion with
// bounded concurrency, and provides fallback URL discovery for sites
// without a sitemap.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sitedex/sitedex"
	"golang.org/x/sync/errgroup"
)

// Harvester fetches and normalizes a set of pages.
type Harvester struct {
	Fetcher   sitedex.Fetcher
	Extractor sitedex.Extractor

	// Fallback is consulted when Extractor returns no content. Optional.
	Fallback sitedex.Extractor

	Converter   sitedex.Converter
	Concurrency int
	RetryDelays []time.Duration
}

// PageResult is the outcome of processing one URL. Position matches the
// URL's index in the input slice.
type PageResult struct {
	Position int
	URL      string
	Page     sitedex.PageRecord
	Err      error
}

// HarvestFunc is called as each page completes, in completion order.
type HarvestFunc func(result PageResult)

// HarvestAll processes every URL and returns results indexed by input
// position. Individual page failures are recorded in the result, never
// returned as an error: one bad page must not abort the site.
func (h *Harvester) HarvestAll(ctx context.Context, urls []string, fn HarvestFunc) []PageResult {
	concurrency := h.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	resultCh := make(chan PageResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, u := range urls {
			i, u := i, u
			g.Go(func() error {
				resultCh <- h.processURL(gctx, i, u)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]PageResult, len(urls))
	for result := range resultCh {
		results[result.Position] = result
		if fn != nil {
			fn(result)
		}
	}
	return results
}

// processURL fetches and normalizes a single URL.
func (h *Harvester) processURL(ctx context.Context, position int, pageURL string) PageResult {
	result := PageResult{Position: position, URL: pageURL}

	delays := h.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	html, err := FetchWithRetryDelays(ctx, pageURL, h.Fetcher.Fetch, nil, delays)
	if err != nil {
		result.Err = fmt.Errorf("fetching %s: %w", pageURL, err)
		return result
	}

	extracted, err := h.extract(html)
	if err != nil {
		result.Err = fmt.Errorf("extracting %s: %w", pageURL, err)
		return result
	}

	markdown, err := h.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		result.Err = fmt.Errorf("converting %s: %w", pageURL, err)
		return result
	}

	result.Page = sitedex.PageRecord{
		PageName:    pageName(extracted.Title, pageURL),
		PageURL:     pageURL,
		Markdown:    markdown,
		ContentHash: ContentHash(markdown),
	}
	return result
}

// extract runs the primary extractor, falling back when it yields nothing.
func (h *Harvester) extract(html string) (*sitedex.ExtractResult, error) {
	extracted, err := h.Extractor.Extract(html)
	if err == nil && strings.TrimSpace(extracted.ContentHTML) != "" {
		return extracted, nil
	}
	if h.Fallback == nil {
		if err != nil {
			return nil, err
		}
		return extracted, nil
	}
	fallback, ferr := h.Fallback.Extract(html)
	if ferr != nil {
		if err != nil {
			return nil, err
		}
		return extracted, nil
	}
	return fallback, nil
}

// pageName derives a display name for a page from its extracted title,
// falling back to the last URL path segment.
func pageName(title, pageURL string) string {
	if title != "" {
		return title
	}
	u, err := url.Parse(pageURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "Home"
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	return segments[len(segments)-1]
}

// ContentHash computes an xxhash digest of page content, used to detect
// unchanged pages across scrape sessions.
func ContentHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

// FormatBytes formats a byte count in human-readable form for log and CLI
// output.
func FormatBytes(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)
	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
