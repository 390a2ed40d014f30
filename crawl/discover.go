package crawl

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/sitedex/sitedex"
)

// Frontier sizing for fallback discovery.
const (
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.01
)

// DefaultMaxDiscoverURLs limits fallback discovery to prevent runaway
// crawls on large sites.
const DefaultMaxDiscoverURLs = 200

// Discoverer finds page URLs by following same-host links from the root
// page. It is the fallback for sites that publish no sitemap.
//
// URLs are visited sequentially to keep rate limiting and frontier
// management simple; sites large enough to need throughput have sitemaps.
type Discoverer struct {
	Fetcher     sitedex.Fetcher
	Links       sitedex.LinkExtractor
	RateLimiter sitedex.DomainLimiter
	MaxURLs     int
	RetryDelays []time.Duration
}

// Discover walks the site breadth-first from rootURL and returns the
// reachable same-host URLs in visit order, rootURL first. Pages that fail
// to fetch are skipped; their outgoing links are simply never seen.
func (d *Discoverer) Discover(ctx context.Context, rootURL string) ([]string, error) {
	root, err := url.Parse(rootURL)
	if err != nil {
		return nil, err
	}
	pathPrefix := root.Path

	maxURLs := d.MaxURLs
	if maxURLs <= 0 {
		maxURLs = DefaultMaxDiscoverURLs
	}

	delays := d.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(sitedex.DiscoveredLink{URL: rootURL})

	var visited []string
	for len(visited) < maxURLs {
		link, ok := frontier.Pop()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			return visited, ctx.Err()
		}

		if d.RateLimiter != nil {
			if err := d.RateLimiter.Wait(ctx, root.Host); err != nil {
				return visited, err
			}
		}

		html, err := FetchWithRetryDelays(ctx, link.URL, d.Fetcher.Fetch, nil, delays)
		if err != nil {
			continue
		}
		visited = append(visited, link.URL)

		links, err := d.Links.ExtractLinks(html, link.URL)
		if err != nil {
			continue
		}
		for _, discovered := range links {
			if !inScope(discovered.URL, root, pathPrefix) {
				continue
			}
			frontier.Push(discovered)
		}
	}

	return visited, nil
}

// inScope reports whether a discovered URL belongs to the crawl: same host
// and under the root path prefix.
func inScope(rawURL string, root *url.URL, pathPrefix string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Host != root.Host {
		return false
	}
	return strings.HasPrefix(u.Path, pathPrefix)
}
