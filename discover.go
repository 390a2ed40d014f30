package sitedex

import "context"

// DiscoveredLink is a URL found while walking a site's pages, used by the
// fallback discoverer when a site publishes no sitemap.
type DiscoveredLink struct {
	URL  string
	Text string
}

// LinkExtractor extracts same-host links from HTML.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns links resolved against baseURL.
	// Links pointing off-host are dropped.
	ExtractLinks(html string, baseURL string) ([]DiscoveredLink, error)
}

// URLFrontier manages a crawl queue with deduplication.
type URLFrontier interface {
	// Push adds a link to the frontier.
	// Returns false if the URL has already been seen.
	Push(link DiscoveredLink) bool

	// Pop returns the next queued link.
	// Returns false if the frontier is empty.
	Pop() (DiscoveredLink, bool)

	// Len returns the number of URLs in the queue.
	Len() int
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
