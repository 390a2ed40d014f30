// Package rod fetches rendered HTML with headless Chrome. Used for sites
// whose content only exists after JavaScript runs (scrape mode "js").
package rod

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sitedex/sitedex"
)

// DefaultMaxPages is the number of pages fetched before the browser is
// recycled. Chrome accumulates memory over time and the baseline never
// returns to initial levels even with proper page cleanup.
const DefaultMaxPages = 75

// Ensure Fetcher implements sitedex.Fetcher at compile time.
var _ sitedex.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// The browser is recycled after maxPages fetches. Fetcher is safe for
// concurrent use.
type Fetcher struct {
	mu        sync.Mutex
	browser   *rod.Browser
	launcher  *launcher.Launcher
	pageCount int
	maxPages  int
	closed    bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxPages sets the number of pages fetched before browser recycling.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(f)
	}

	if err := f.launchBrowser(); err != nil {
		return nil, err
	}

	return f, nil
}

// launchBrowser starts a headless Chrome and connects to it. Callers must
// hold mu or be the constructor.
func (f *Fetcher) launchBrowser() error {
	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	f.launcher = l
	f.browser = browser
	f.pageCount = 0
	return nil
}

// acquireBrowser returns the current browser, recycling it once the page
// count reaches the threshold.
func (f *Fetcher) acquireBrowser() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, sitedex.Errorf(sitedex.EINVALID, "fetcher is closed")
	}

	if f.pageCount >= f.maxPages {
		f.browser.Close()
		f.launcher.Kill()
		if err := f.launchBrowser(); err != nil {
			return nil, fmt.Errorf("recycling browser: %w", err)
		}
	}
	f.pageCount++

	return f.browser, nil
}

// Fetch navigates to the URL and returns the fully rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser, err := f.acquireBrowser()
	if err != nil {
		return "", err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	return html, nil
}

// Close releases browser resources. Safe to call multiple times.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	err := f.browser.Close()
	f.launcher.Kill()
	return err
}
