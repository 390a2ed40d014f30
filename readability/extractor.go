// Package readability extracts main page content with go-readability. It is
// the fallback when trafilatura yields nothing for a page.
package readability

import (
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/sitedex/sitedex"
)

// Ensure Extractor implements sitedex.Extractor at compile time.
var _ sitedex.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*sitedex.ExtractResult, error) {
	if rawHTML == "" {
		return nil, sitedex.Errorf(sitedex.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &sitedex.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
