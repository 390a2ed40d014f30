package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sitedex/sitedex"
	"github.com/sitedex/sitedex/crawl"
	"github.com/sitedex/sitedex/mock"
	"github.com/sitedex/sitedex/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncPool runs submitted tasks inline so tests observe the full pipeline
// synchronously.
type syncPool struct{}

func (syncPool) Submit(task func()) error {
	task()
	return nil
}

// sessionRecorder tracks status transitions in memory.
type sessionRecorder struct {
	mu       sync.Mutex
	statuses []sitedex.SessionStatus
	messages []string
}

func (r *sessionRecorder) service() *mock.SessionService {
	return &mock.SessionService{
		CreateSessionFn: func(ctx context.Context, req sitedex.ScrapeRequest) (*sitedex.Session, error) {
			return &sitedex.Session{ID: "sess-1", Status: sitedex.StatusPending, URL: req.URL}, nil
		},
		FindSessionByIDFn: func(ctx context.Context, id string) (*sitedex.Session, error) {
			return &sitedex.Session{ID: id, Status: r.current()}, nil
		},
		UpdateStatusFn: func(ctx context.Context, id string, status sitedex.SessionStatus, errMessage string) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.statuses = append(r.statuses, status)
			r.messages = append(r.messages, errMessage)
			return nil
		},
	}
}

func (r *sessionRecorder) current() sitedex.SessionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		return sitedex.StatusPending
	}
	return r.statuses[len(r.statuses)-1]
}

func (r *sessionRecorder) final() (sitedex.SessionStatus, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		return "", ""
	}
	return r.statuses[len(r.statuses)-1], r.messages[len(r.messages)-1]
}

func newHarvester(fetch func(ctx context.Context, url string) (string, error)) *crawl.Harvester {
	return &crawl.Harvester{
		Fetcher: &mock.Fetcher{FetchFn: fetch},
		Extractor: &mock.Extractor{ExtractFn: func(html string) (*sitedex.ExtractResult, error) {
			return &sitedex.ExtractResult{Title: "Page", ContentHTML: html}, nil
		}},
		Converter: &mock.Converter{ConvertFn: func(html string) (string, error) {
			return "# " + html, nil
		}},
		RetryDelays: []time.Duration{},
	}
}

func TestOrchestrator_StartScrape_InvalidURL(t *testing.T) {
	t.Parallel()

	o := &pipeline.Orchestrator{Pool: syncPool{}}

	_, err := o.StartScrape(context.Background(), sitedex.ScrapeRequest{URL: "not-a-url"})
	require.Error(t, err)
	assert.Equal(t, sitedex.EINVALID, sitedex.ErrorCode(err))
}

func TestOrchestrator_ScrapeCompletes(t *testing.T) {
	t.Parallel()

	recorder := &sessionRecorder{}
	var savedPages []sitedex.PageRecord
	var savedArtifact *sitedex.Artifact
	var mu sync.Mutex

	o := &pipeline.Orchestrator{
		Sessions: recorder.service(),
		Artifacts: &mock.ArtifactStore{
			SavePageFn: func(ctx context.Context, sessionID string, position int, page sitedex.PageRecord) error {
				mu.Lock()
				defer mu.Unlock()
				savedPages = append(savedPages, page)
				return nil
			},
			SaveArtifactFn: func(ctx context.Context, sessionID string, artifact *sitedex.Artifact) (string, error) {
				savedArtifact = artifact
				return "example.com_sess-1.json", nil
			},
		},
		Sitemap: &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string) ([]string, error) {
				return []string{
					"https://example.com/",
					"https://example.com/pricing",
					"https://example.com/hours",
				}, nil
			},
		},
		Harvester: newHarvester(func(ctx context.Context, url string) (string, error) {
			return "content of " + url, nil
		}),
		Pool: syncPool{},
	}

	session, err := o.StartScrape(context.Background(), sitedex.ScrapeRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)

	status, msg := recorder.final()
	assert.Equal(t, sitedex.StatusCompleted, status)
	assert.Empty(t, msg)
	assert.Len(t, savedPages, 3)
	require.NotNil(t, savedArtifact)
	assert.Equal(t, "example.com", savedArtifact.Domain)
	assert.Equal(t, "example_com", savedArtifact.Collection)
	require.Len(t, savedArtifact.Pages, 3)

	// Artifact pages are ordered by discovery position.
	assert.Contains(t, savedArtifact.Pages[1].Markdown, "pricing")
	assert.Contains(t, savedArtifact.Pages[2].Markdown, "hours")
}

func TestOrchestrator_StatusObservableWhileFetchRuns(t *testing.T) {
	t.Parallel()

	recorder := &sessionRecorder{}
	sessions := recorder.service()
	gate := make(chan struct{})

	pool, err := pipeline.NewPool(2, nil)
	require.NoError(t, err)
	defer pool.Release()

	o := &pipeline.Orchestrator{
		Sessions: sessions,
		Artifacts: &mock.ArtifactStore{
			SavePageFn: func(ctx context.Context, sessionID string, position int, page sitedex.PageRecord) error {
				return nil
			},
			SaveArtifactFn: func(ctx context.Context, sessionID string, artifact *sitedex.Artifact) (string, error) {
				return "example.com_sess-1.json", nil
			},
		},
		Sitemap: &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string) ([]string, error) {
				return []string{"https://example.com/"}, nil
			},
		},
		Harvester: newHarvester(func(ctx context.Context, url string) (string, error) {
			<-gate
			return "content", nil
		}),
		Pool: pool,
	}

	session, err := o.StartScrape(context.Background(), sitedex.ScrapeRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, sitedex.StatusPending, session.Status)

	// The fetcher is parked on the gate, so the background task cannot
	// have finished and a status lookup sees an in-flight session.
	found, err := sessions.FindSessionByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Contains(t,
		[]sitedex.SessionStatus{sitedex.StatusPending, sitedex.StatusRunning},
		found.Status)

	close(gate)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, pool.Wait(ctx))

	status, _ := recorder.final()
	assert.Equal(t, sitedex.StatusCompleted, status)
}

func TestOrchestrator_PartialFailureStillCompletes(t *testing.T) {
	t.Parallel()

	recorder := &sessionRecorder{}
	var savedArtifact *sitedex.Artifact

	o := &pipeline.Orchestrator{
		Sessions: recorder.service(),
		Artifacts: &mock.ArtifactStore{
			SavePageFn: func(ctx context.Context, sessionID string, position int, page sitedex.PageRecord) error {
				return nil
			},
			SaveArtifactFn: func(ctx context.Context, sessionID string, artifact *sitedex.Artifact) (string, error) {
				savedArtifact = artifact
				return "example.com_sess-1.json", nil
			},
		},
		Sitemap: &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string) ([]string, error) {
				return []string{
					"https://example.com/a",
					"https://example.com/broken",
					"https://example.com/c",
				}, nil
			},
		},
		Harvester: newHarvester(func(ctx context.Context, url string) (string, error) {
			if url == "https://example.com/broken" {
				return "", errors.New("connection reset")
			}
			return "content", nil
		}),
		Pool: syncPool{},
	}

	_, err := o.StartScrape(context.Background(), sitedex.ScrapeRequest{URL: "https://example.com"})
	require.NoError(t, err)

	status, _ := recorder.final()
	assert.Equal(t, sitedex.StatusCompleted, status)
	require.NotNil(t, savedArtifact)
	assert.Len(t, savedArtifact.Pages, 2)
}

func TestOrchestrator_NoPagesDiscoveredFails(t *testing.T) {
	t.Parallel()

	recorder := &sessionRecorder{}

	o := &pipeline.Orchestrator{
		Sessions:  recorder.service(),
		Artifacts: &mock.ArtifactStore{},
		Sitemap: &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string) ([]string, error) {
				return nil, nil
			},
		},
		Pool: syncPool{},
	}

	_, err := o.StartScrape(context.Background(), sitedex.ScrapeRequest{URL: "https://example.com"})
	require.NoError(t, err)

	status, msg := recorder.final()
	assert.Equal(t, sitedex.StatusFailed, status)
	assert.Contains(t, msg, "no pages discovered")
}

func TestOrchestrator_DiscoveryErrorFails(t *testing.T) {
	t.Parallel()

	recorder := &sessionRecorder{}

	o := &pipeline.Orchestrator{
		Sessions:  recorder.service(),
		Artifacts: &mock.ArtifactStore{},
		Sitemap: &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string) ([]string, error) {
				return nil, errors.New("dns lookup failed")
			},
		},
		Pool: syncPool{},
	}

	_, err := o.StartScrape(context.Background(), sitedex.ScrapeRequest{URL: "https://example.com"})
	require.NoError(t, err)

	status, msg := recorder.final()
	assert.Equal(t, sitedex.StatusFailed, status)
	assert.Contains(t, msg, "discovery failed")
}

func TestOrchestrator_FallbackDiscoveryUsedWhenSitemapEmpty(t *testing.T) {
	t.Parallel()

	recorder := &sessionRecorder{}
	fallbackCalled := false

	o := &pipeline.Orchestrator{
		Sessions: recorder.service(),
		Artifacts: &mock.ArtifactStore{
			SavePageFn: func(ctx context.Context, sessionID string, position int, page sitedex.PageRecord) error {
				return nil
			},
			SaveArtifactFn: func(ctx context.Context, sessionID string, artifact *sitedex.Artifact) (string, error) {
				return "f.json", nil
			},
		},
		Sitemap: &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string) ([]string, error) {
				return nil, nil
			},
		},
		Fallback: discoverFunc(func(ctx context.Context, rootURL string) ([]string, error) {
			fallbackCalled = true
			return []string{"https://example.com/"}, nil
		}),
		Harvester: newHarvester(func(ctx context.Context, url string) (string, error) {
			return "content", nil
		}),
		Pool: syncPool{},
	}

	_, err := o.StartScrape(context.Background(), sitedex.ScrapeRequest{URL: "https://example.com"})
	require.NoError(t, err)

	assert.True(t, fallbackCalled)
	status, _ := recorder.final()
	assert.Equal(t, sitedex.StatusCompleted, status)
}

type discoverFunc func(ctx context.Context, rootURL string) ([]string, error)

func (f discoverFunc) Discover(ctx context.Context, rootURL string) ([]string, error) {
	return f(ctx, rootURL)
}

func TestOrchestrator_AllPagesFailedFails(t *testing.T) {
	t.Parallel()

	recorder := &sessionRecorder{}

	o := &pipeline.Orchestrator{
		Sessions: recorder.service(),
		Artifacts: &mock.ArtifactStore{
			SavePageFn: func(ctx context.Context, sessionID string, position int, page sitedex.PageRecord) error {
				return nil
			},
		},
		Sitemap: &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string) ([]string, error) {
				return []string{"https://example.com/a", "https://example.com/b"}, nil
			},
		},
		Harvester: newHarvester(func(ctx context.Context, url string) (string, error) {
			return "", errors.New("unreachable")
		}),
		Pool: syncPool{},
	}

	_, err := o.StartScrape(context.Background(), sitedex.ScrapeRequest{URL: "https://example.com"})
	require.NoError(t, err)

	status, msg := recorder.final()
	assert.Equal(t, sitedex.StatusFailed, status)
	assert.Contains(t, msg, "all pages failed")
}

func TestOrchestrator_PersistenceFailureFails(t *testing.T) {
	t.Parallel()

	recorder := &sessionRecorder{}

	o := &pipeline.Orchestrator{
		Sessions: recorder.service(),
		Artifacts: &mock.ArtifactStore{
			SavePageFn: func(ctx context.Context, sessionID string, position int, page sitedex.PageRecord) error {
				return errors.New("disk full")
			},
		},
		Sitemap: &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string) ([]string, error) {
				return []string{"https://example.com/"}, nil
			},
		},
		Harvester: newHarvester(func(ctx context.Context, url string) (string, error) {
			return "content", nil
		}),
		Pool: syncPool{},
	}

	_, err := o.StartScrape(context.Background(), sitedex.ScrapeRequest{URL: "https://example.com"})
	require.NoError(t, err)

	status, msg := recorder.final()
	assert.Equal(t, sitedex.StatusFailed, status)
	assert.Contains(t, msg, "failed to persist pages")
}

func TestOrchestrator_StartEmbed_EmptySelector(t *testing.T) {
	t.Parallel()

	o := &pipeline.Orchestrator{Pool: syncPool{}}

	_, err := o.StartEmbed(context.Background(), sitedex.EmbedSelector{})
	require.Error(t, err)
	assert.Equal(t, sitedex.EINVALID, sitedex.ErrorCode(err))
}

func TestOrchestrator_StartEmbed_ResolvesSessionID(t *testing.T) {
	t.Parallel()

	o := &pipeline.Orchestrator{
		Artifacts: &mock.ArtifactStore{
			ListArtifactsFn: func(ctx context.Context) ([]string, error) {
				return []string{
					"a.com_sess-1.json",
					"b.com_sess-2.json",
					"c.com_sess-2.json",
				}, nil
			},
			LoadArtifactFn: func(ctx context.Context, filename string) (*sitedex.Artifact, error) {
				return &sitedex.Artifact{Domain: "b.com", Collection: "b_com"}, nil
			},
		},
		Pool: syncPool{},
	}

	// First lexical match wins when multiple artifacts contain the id.
	filename, err := o.StartEmbed(context.Background(), sitedex.EmbedSelector{SessionID: "sess-2"})
	require.NoError(t, err)
	assert.Equal(t, "b.com_sess-2.json", filename)
}

func TestOrchestrator_StartEmbed_SessionIDTakesPrecedenceOverFilename(t *testing.T) {
	t.Parallel()

	o := &pipeline.Orchestrator{
		Artifacts: &mock.ArtifactStore{
			ListArtifactsFn: func(ctx context.Context) ([]string, error) {
				return []string{"a.com_sess-1.json", "b.com_sess-2.json"}, nil
			},
			LoadArtifactFn: func(ctx context.Context, filename string) (*sitedex.Artifact, error) {
				return &sitedex.Artifact{Domain: "b.com", Collection: "b_com"}, nil
			},
		},
		Pool: syncPool{},
	}

	filename, err := o.StartEmbed(context.Background(), sitedex.EmbedSelector{
		SessionID: "sess-2",
		Filename:  "a.com_sess-1.json",
	})
	require.NoError(t, err)
	assert.Equal(t, "b.com_sess-2.json", filename)
}

func TestOrchestrator_StartEmbed_UnknownSessionID(t *testing.T) {
	t.Parallel()

	o := &pipeline.Orchestrator{
		Artifacts: &mock.ArtifactStore{
			ListArtifactsFn: func(ctx context.Context) ([]string, error) {
				return []string{"a.com_sess-1.json"}, nil
			},
		},
		Pool: syncPool{},
	}

	_, err := o.StartEmbed(context.Background(), sitedex.EmbedSelector{SessionID: "nope"})
	require.Error(t, err)
	assert.Equal(t, sitedex.ENOTFOUND, sitedex.ErrorCode(err))
}

func TestOrchestrator_EmbedIndexesEveryPage(t *testing.T) {
	t.Parallel()

	var indexedPages []string

	o := &pipeline.Orchestrator{
		Artifacts: &mock.ArtifactStore{
			LoadArtifactFn: func(ctx context.Context, filename string) (*sitedex.Artifact, error) {
				return &sitedex.Artifact{
					Domain:     "example.com",
					Collection: "example_com",
					Pages: []sitedex.PageRecord{
						{PageName: "Home", PageURL: "https://example.com/", Markdown: "# Home\n\nWelcome."},
						{PageName: "Empty", PageURL: "https://example.com/empty", Markdown: "   "},
						{PageName: "Pricing", PageURL: "https://example.com/pricing", Markdown: "# Pricing\n\n$40 per month."},
					},
				}, nil
			},
		},
		Indexer: &mock.VectorIndexer{
			EmbedAndIndexFn: func(ctx context.Context, collection, domain, pageName, pageURL string, chunks []sitedex.Chunk) error {
				assert.Equal(t, "example_com", collection)
				assert.Equal(t, "example.com", domain)
				assert.NotEmpty(t, chunks)
				indexedPages = append(indexedPages, pageName)
				return nil
			},
		},
		Pool: syncPool{},
	}

	_, err := o.StartEmbed(context.Background(), sitedex.EmbedSelector{Filename: "example.com_sess-1.json"})
	require.NoError(t, err)

	// Empty pages are skipped, the rest indexed.
	assert.Equal(t, []string{"Home", "Pricing"}, indexedPages)
}

func TestOrchestrator_EmbedPageFailureDoesNotAbortSiblings(t *testing.T) {
	t.Parallel()

	var indexedPages []string

	o := &pipeline.Orchestrator{
		Artifacts: &mock.ArtifactStore{
			LoadArtifactFn: func(ctx context.Context, filename string) (*sitedex.Artifact, error) {
				return &sitedex.Artifact{
					Domain:     "example.com",
					Collection: "example_com",
					Pages: []sitedex.PageRecord{
						{PageName: "A", PageURL: "https://example.com/a", Markdown: "content a"},
						{PageName: "B", PageURL: "https://example.com/b", Markdown: "content b"},
						{PageName: "C", PageURL: "https://example.com/c", Markdown: "content c"},
					},
				}, nil
			},
		},
		Indexer: &mock.VectorIndexer{
			EmbedAndIndexFn: func(ctx context.Context, collection, domain, pageName, pageURL string, chunks []sitedex.Chunk) error {
				if pageName == "B" {
					return fmt.Errorf("embedding service down")
				}
				indexedPages = append(indexedPages, pageName)
				return nil
			},
		},
		Pool: syncPool{},
	}

	_, err := o.StartEmbed(context.Background(), sitedex.EmbedSelector{Filename: "f.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, indexedPages)
}

func TestOrchestrator_EmbedMissingArtifactIsLogOnly(t *testing.T) {
	t.Parallel()

	o := &pipeline.Orchestrator{
		Artifacts: &mock.ArtifactStore{
			LoadArtifactFn: func(ctx context.Context, filename string) (*sitedex.Artifact, error) {
				return nil, sitedex.Errorf(sitedex.ENOTFOUND, "artifact not found")
			},
		},
		Pool: syncPool{},
	}

	// StartEmbed with an explicit filename succeeds; the stage logs and
	// returns when the artifact is gone.
	filename, err := o.StartEmbed(context.Background(), sitedex.EmbedSelector{Filename: "gone.json"})
	require.NoError(t, err)
	assert.Equal(t, "gone.json", filename)
}
