package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/sitedex/sitedex"
	"github.com/sitedex/sitedex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("sitedex"), kong.Exit(func(int) {}))
	require.NoError(t, err)

	kongCtx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, kongCtx
}

func TestCLI_ParseScrape(t *testing.T) {
	t.Parallel()

	cli, kongCtx := parseCLI(t, "scrape", "https://example.com",
		"--purpose", "gym info", "--collection", "gyms", "--no-wait")

	assert.Equal(t, "scrape <url>", kongCtx.Command())
	assert.Equal(t, "https://example.com", cli.Scrape.URL)
	assert.Equal(t, "gym info", cli.Scrape.Purpose)
	assert.Equal(t, "gyms", cli.Scrape.Collection)
	assert.True(t, cli.Scrape.NoWait)
}

func TestCLI_ParseSearchDefaults(t *testing.T) {
	t.Parallel()

	cli, _ := parseCLI(t, "search", "opening hours", "--collection", "gyms")

	assert.Equal(t, "opening hours", cli.Search.Query)
	assert.Equal(t, 5, cli.Search.Limit)
}

func TestCLI_SearchRequiresCollection(t *testing.T) {
	t.Parallel()

	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("sitedex"), kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"search", "hours"})
	require.Error(t, err)
}

func TestCLI_ParseServeDefaults(t *testing.T) {
	t.Parallel()

	cli, _ := parseCLI(t, "serve")
	assert.Equal(t, ":8000", cli.Serve.Addr)
	assert.False(t, cli.Serve.JS)
}

func TestStatusCmd_PrintsSession(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	deps := &Dependencies{
		Ctx:    context.Background(),
		Stdout: &stdout,
		Stderr: &stderr,
		Sessions: &mock.SessionService{
			FindSessionByIDFn: func(ctx context.Context, id string) (*sitedex.Session, error) {
				return &sitedex.Session{
					ID:     id,
					Status: sitedex.StatusCompleted,
					URL:    "https://example.com",
				}, nil
			},
			CountPagesFn: func(ctx context.Context, id string) (int, error) {
				return 12, nil
			},
		},
	}

	cmd := &StatusCmd{SessionID: "sess-1"}
	require.NoError(t, cmd.Run(deps))
	assert.Contains(t, stdout.String(), "sess-1")
	assert.Contains(t, stdout.String(), "completed")
	assert.Contains(t, stdout.String(), "12")
}

func TestStatusCmd_NotFound(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	deps := &Dependencies{
		Ctx:    context.Background(),
		Stdout: &stdout,
		Stderr: &stderr,
		Sessions: &mock.SessionService{
			FindSessionByIDFn: func(ctx context.Context, id string) (*sitedex.Session, error) {
				return nil, sitedex.Errorf(sitedex.ENOTFOUND, "session not found")
			},
		},
	}

	cmd := &StatusCmd{SessionID: "nope"}
	require.Error(t, cmd.Run(deps))
	assert.Contains(t, stderr.String(), "session not found")
}

func TestScrapeCmd_NoWait(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	deps := &Dependencies{
		Ctx:    context.Background(),
		Stdout: &stdout,
		Stderr: &stderr,
		Orchestrator: &mock.Orchestrator{
			StartScrapeFn: func(ctx context.Context, req sitedex.ScrapeRequest) (*sitedex.Session, error) {
				assert.Equal(t, "https://example.com", req.URL)
				return &sitedex.Session{ID: "sess-7", Status: sitedex.StatusPending}, nil
			},
		},
	}

	cmd := &ScrapeCmd{URL: "https://example.com", NoWait: true}
	require.NoError(t, cmd.Run(deps))
	assert.Contains(t, stdout.String(), "sess-7")
}

func TestEmbedCmd_PrintsResolvedFilename(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	deps := &Dependencies{
		Ctx:    context.Background(),
		Stdout: &stdout,
		Stderr: &stderr,
		Orchestrator: &mock.Orchestrator{
			StartEmbedFn: func(ctx context.Context, sel sitedex.EmbedSelector) (string, error) {
				assert.Equal(t, "sess-1", sel.SessionID)
				return "example.com_sess-1.json", nil
			},
		},
	}

	cmd := &EmbedCmd{Session: "sess-1"}
	require.NoError(t, cmd.Run(deps))
	assert.Contains(t, stdout.String(), "example.com_sess-1.json")
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	deps := &Dependencies{
		Ctx:    context.Background(),
		Stdout: &stdout,
		Stderr: &stderr,
		Searcher: &mock.Searcher{
			SearchFn: func(ctx context.Context, query string, opts sitedex.SearchOptions) ([]sitedex.SearchResult, error) {
				return []sitedex.SearchResult{
					{
						Record: &sitedex.VectorRecord{
							PageName: "Hours",
							PageURL:  "https://example.com/hours",
							Text:     "Open 6am to 10pm.",
						},
						Score: 0.88,
					},
				}, nil
			},
		},
	}

	cmd := &SearchCmd{Query: "hours", Collection: "gyms", Limit: 5}
	require.NoError(t, cmd.Run(deps))
	assert.Contains(t, stdout.String(), "Hours")
	assert.Contains(t, stdout.String(), "Open 6am to 10pm.")
}

func TestSearchCmd_NoResults(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	deps := &Dependencies{
		Ctx:    context.Background(),
		Stdout: &stdout,
		Stderr: &stderr,
		Searcher: &mock.Searcher{
			SearchFn: func(ctx context.Context, query string, opts sitedex.SearchOptions) ([]sitedex.SearchResult, error) {
				return nil, nil
			},
		},
	}

	cmd := &SearchCmd{Query: "hours", Collection: "gyms"}
	require.NoError(t, cmd.Run(deps))
	assert.Contains(t, stdout.String(), "No results.")
}
