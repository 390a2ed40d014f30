package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sitedex/sitedex"
	"github.com/sitedex/sitedex/crawl"
)

// Discoverer finds page URLs by crawling outward from a root page. It is the
// fallback when a site publishes no sitemap.
type Discoverer interface {
	Discover(ctx context.Context, rootURL string) ([]string, error)
}

// Ensure Orchestrator implements sitedex.Orchestrator at compile time.
var _ sitedex.Orchestrator = (*Orchestrator)(nil)

// Orchestrator implements sitedex.Orchestrator. StartScrape and StartEmbed
// return as soon as the background task is scheduled; the fetch stage owns
// all session status transitions and the embed stage never touches them.
type Orchestrator struct {
	Sessions  sitedex.SessionService
	Artifacts sitedex.ArtifactStore
	Sitemap   sitedex.SitemapService
	Harvester *crawl.Harvester
	Indexer   sitedex.VectorIndexer
	Pool      Submitter
	Logger    *slog.Logger

	// Fallback discovers URLs by crawling when the sitemap yields nothing.
	// Optional.
	Fallback Discoverer

	// FetchTimeout bounds the whole fetch stage. Zero means no deadline.
	FetchTimeout time.Duration
}

// StartScrape creates a session and schedules the fetch stage.
func (o *Orchestrator) StartScrape(ctx context.Context, req sitedex.ScrapeRequest) (*sitedex.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session, err := o.Sessions.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := o.Pool.Submit(func() {
		o.runFetchStage(session.ID, req)
	}); err != nil {
		// The session exists but will never run; record that.
		if uerr := o.Sessions.UpdateStatus(context.Background(), session.ID,
			sitedex.StatusFailed, "failed to schedule fetch"); uerr != nil {
			o.logger().Error("failed to mark session failed", "sessionID", session.ID, "err", uerr)
		}
		return nil, err
	}

	return session, nil
}

// runFetchStage discovers, fetches and persists the session's pages. It runs
// detached from the request that started it.
func (o *Orchestrator) runFetchStage(sessionID string, req sitedex.ScrapeRequest) {
	ctx := context.Background()
	if o.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.FetchTimeout)
		defer cancel()
	}

	logger := o.logger().With("sessionID", sessionID, "url", req.URL)

	if err := o.Sessions.UpdateStatus(ctx, sessionID, sitedex.StatusRunning, ""); err != nil {
		logger.Error("failed to mark session running", "err", err)
		return
	}

	urls, err := o.discoverURLs(ctx, req.URL)
	if err != nil {
		o.fail(sessionID, logger, fmt.Sprintf("discovery failed: %v", err))
		return
	}
	if len(urls) == 0 {
		o.fail(sessionID, logger, "no pages discovered")
		return
	}
	logger.Info("discovered pages", "count", len(urls))

	var saveErr error
	results := o.Harvester.HarvestAll(ctx, urls, func(result crawl.PageResult) {
		if result.Err != nil {
			logger.Warn("page failed", "pageURL", result.URL, "err", result.Err)
			return
		}
		if err := o.Artifacts.SavePage(ctx, sessionID, result.Position, result.Page); err != nil && saveErr == nil {
			saveErr = err
		}
	})

	if saveErr != nil {
		o.fail(sessionID, logger, fmt.Sprintf("failed to persist pages: %v", saveErr))
		return
	}
	if ctx.Err() != nil {
		o.fail(sessionID, logger, fmt.Sprintf("fetch stage timed out after %s", o.FetchTimeout))
		return
	}

	artifact := &sitedex.Artifact{
		Domain:     req.Domain(),
		Collection: collectionName(req),
	}
	var markdownBytes int
	for _, result := range results {
		if result.Err == nil {
			artifact.Pages = append(artifact.Pages, result.Page)
			markdownBytes += len(result.Page.Markdown)
		}
	}

	if len(artifact.Pages) == 0 {
		o.fail(sessionID, logger, "all pages failed to fetch")
		return
	}

	filename, err := o.Artifacts.SaveArtifact(ctx, sessionID, artifact)
	if err != nil {
		o.fail(sessionID, logger, fmt.Sprintf("failed to save artifact: %v", err))
		return
	}

	if err := o.Sessions.UpdateStatus(ctx, sessionID, sitedex.StatusCompleted, ""); err != nil {
		logger.Error("failed to mark session completed", "err", err)
		return
	}
	logger.Info("scrape completed",
		"pages", len(artifact.Pages),
		"failed", len(results)-len(artifact.Pages),
		"markdown", crawl.FormatBytes(markdownBytes),
		"artifact", filename)
}

// discoverURLs tries the sitemap first and falls back to crawling.
func (o *Orchestrator) discoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	urls, err := o.Sitemap.DiscoverURLs(ctx, baseURL)
	if err == nil && len(urls) > 0 {
		return urls, nil
	}
	if err != nil {
		o.logger().Warn("sitemap discovery failed", "url", baseURL, "err", err)
	}
	if o.Fallback == nil {
		return urls, err
	}
	return o.Fallback.Discover(ctx, baseURL)
}

// StartEmbed resolves the selector to an artifact and schedules the embed
// stage for it.
func (o *Orchestrator) StartEmbed(ctx context.Context, sel sitedex.EmbedSelector) (string, error) {
	var filename string
	switch {
	case sel.SessionID != "":
		// A session id takes precedence; a filename alongside it is
		// ignored.
		resolved, err := o.resolveBySessionID(ctx, sel.SessionID)
		if err != nil {
			return "", err
		}
		filename = resolved
	case sel.Filename != "":
		filename = sel.Filename
	default:
		return "", sitedex.Errorf(sitedex.EINVALID, "session id or filename required")
	}

	if err := o.Pool.Submit(func() {
		o.runEmbedStage(filename)
	}); err != nil {
		return "", err
	}

	return filename, nil
}

// resolveBySessionID returns the first artifact filename containing the
// session id, in lexical filename order.
func (o *Orchestrator) resolveBySessionID(ctx context.Context, sessionID string) (string, error) {
	filenames, err := o.Artifacts.ListArtifacts(ctx)
	if err != nil {
		return "", err
	}
	for _, name := range filenames {
		if strings.Contains(name, sessionID) {
			return name, nil
		}
	}
	return "", sitedex.Errorf(sitedex.ENOTFOUND, "no artifact found for session %q", sessionID)
}

// runEmbedStage chunks, embeds and indexes every page of the artifact. All
// failures here are logged, never surfaced to the session: the scraped
// content is already durable and the run can simply be repeated.
func (o *Orchestrator) runEmbedStage(filename string) {
	ctx := context.Background()
	logger := o.logger().With("artifact", filename)

	artifact, err := o.Artifacts.LoadArtifact(ctx, filename)
	if err != nil {
		logger.Error("failed to load artifact", "err", err)
		return
	}
	if len(artifact.Pages) == 0 {
		logger.Info("artifact has no pages, nothing to embed")
		return
	}

	if err := o.Indexer.LoadModel(ctx); err != nil {
		logger.Error("failed to load embedding model", "err", err)
		return
	}
	if err := o.Indexer.EnsureCollection(ctx, artifact.Collection); err != nil {
		logger.Error("failed to ensure collection", "collection", artifact.Collection, "err", err)
		return
	}

	var indexed, skipped, failed int
	for _, page := range artifact.Pages {
		if strings.TrimSpace(page.Markdown) == "" {
			skipped++
			continue
		}
		chunks := sitedex.ChunkMarkdown(page.Markdown, page.PageName)
		if len(chunks) == 0 {
			skipped++
			continue
		}
		if err := o.Indexer.EmbedAndIndex(ctx, artifact.Collection, artifact.Domain,
			page.PageName, page.PageURL, chunks); err != nil {
			logger.Warn("failed to index page", "pageURL", page.PageURL, "err", err)
			failed++
			continue
		}
		indexed++
	}

	logger.Info("embed completed",
		"collection", artifact.Collection,
		"indexed", indexed, "skipped", skipped, "failed", failed)
}

func (o *Orchestrator) fail(sessionID string, logger *slog.Logger, message string) {
	logger.Error("scrape failed", "reason", message)
	if err := o.Sessions.UpdateStatus(context.Background(), sessionID, sitedex.StatusFailed, message); err != nil {
		logger.Error("failed to mark session failed", "err", err)
	}
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// collectionName derives the vector collection for a request. An explicit
// collection wins; otherwise the site's host is normalized into a name that
// aggregates all sessions for the same site.
func collectionName(req sitedex.ScrapeRequest) string {
	if req.Collection != "" {
		return req.Collection
	}
	name := strings.ToLower(req.Domain())
	name = strings.TrimPrefix(name, "www.")
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
