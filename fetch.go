package sitedex

import "context"

// Fetcher retrieves raw HTML from URLs. The pipeline treats any fetch error
// as a per-page or per-session failure; retry policy is owned by callers.
type Fetcher interface {
	// Fetch returns the HTML at url. The context controls timeout and
	// cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases fetcher resources.
	Close() error
}

// SitemapService discovers page URLs from a site's sitemap.
type SitemapService interface {
	// DiscoverURLs finds all page URLs for the site, checking robots.txt
	// for sitemap directives and falling back to /sitemap.xml. Sitemap
	// indexes are resolved recursively. Returns an empty slice when the
	// site publishes no sitemap.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}

// ExtractResult holds the main content extracted from an HTML page.
type ExtractResult struct {
	// Title is the page title from metadata.
	Title string

	// ContentHTML is the main content with boilerplate (nav, footer,
	// sidebar) removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter converts clean HTML to Markdown.
type Converter interface {
	Convert(html string) (string, error)
}
