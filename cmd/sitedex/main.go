package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/sitedex/sitedex"
	"github.com/sitedex/sitedex/crawl"
	"github.com/sitedex/sitedex/fs"
	"github.com/sitedex/sitedex/gemini"
	"github.com/sitedex/sitedex/goquery"
	"github.com/sitedex/sitedex/htmltomarkdown"
	sitedexhttp "github.com/sitedex/sitedex/http"
	"github.com/sitedex/sitedex/openai"
	"github.com/sitedex/sitedex/pipeline"
	"github.com/sitedex/sitedex/readability"
	"github.com/sitedex/sitedex/rod"
	sitedexslog "github.com/sitedex/sitedex/slog"
	"github.com/sitedex/sitedex/sqlite"
	"github.com/sitedex/sitedex/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()
	defer m.Close()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// DataDir holds sessions and artifacts. Set before calling Run().
	DataDir string

	// DBPath is the vector index database path.
	DBPath string

	// SQLite database backing the vector store.
	DB *sqlite.DB

	// Fetcher in use, closed on shutdown.
	Fetcher sitedex.Fetcher

	// Pool runs background pipeline stages.
	Pool *pipeline.Pool

	// Services exposed for end-to-end testing.
	Sessions  sitedex.SessionService
	Artifacts sitedex.ArtifactStore
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DataDir: defaultDataDir(),
		DBPath:  defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Pool != nil {
		m.Pool.Release()
	}
	if m.Fetcher != nil {
		m.Fetcher.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitedex"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitedex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	m.Sessions = sitedexslog.NewLoggingSessionService(fs.NewSessionService(m.DataDir), logger)
	m.Artifacts = fs.NewArtifactStore(m.DataDir)
	deps.Sessions = m.Sessions
	deps.Artifacts = m.Artifacts

	// The vector index is needed by every command except plain status polls;
	// opening it unconditionally keeps wiring simple.
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintln(stderr, "Hint: Set SITEDEX_DB to use a different database path")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}
	store := sqlite.NewVectorStore(m.DB)
	deps.Searcher = &pipeline.Searcher{Embedder: embedder, Store: store}

	// Scrape and serve need the full fetch stack.
	if cmd == "serve" || cmd == "scrape" || cmd == "embed" {
		js := (cmd == "serve" && cli.Serve.JS) || (cmd == "scrape" && cli.Scrape.JS)
		if js {
			fetcher, err := rod.NewFetcher()
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --js")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			m.Fetcher = fetcher
		} else {
			m.Fetcher = sitedexhttp.NewFetcher()
		}

		m.Pool, err = pipeline.NewPool(0, logger)
		if err != nil {
			return fmt.Errorf("failed to create worker pool: %w", err)
		}
		deps.Pool = m.Pool

		sitemaps := sitedexslog.NewLoggingSitemapService(sitedexhttp.NewSitemapService(nil), logger)
		rateLimiter := crawl.NewDomainLimiter(1.0)

		deps.Orchestrator = &pipeline.Orchestrator{
			Sessions:  m.Sessions,
			Artifacts: m.Artifacts,
			Sitemap:   sitemaps,
			Harvester: &crawl.Harvester{
				Fetcher:   m.Fetcher,
				Extractor: trafilatura.NewExtractor(),
				Fallback:  readability.NewExtractor(),
				Converter: htmltomarkdown.NewConverter(),
			},
			Fallback: &crawl.Discoverer{
				Fetcher:     m.Fetcher,
				Links:       goquery.NewLinkExtractor(),
				RateLimiter: rateLimiter,
			},
			Indexer: &pipeline.Indexer{Embedder: embedder, Store: store},
			Pool:    m.Pool,
			Logger:  logger,
		}
	}

	return kongCtx.Run(deps)
}

// newEmbedder selects the embedding backend from the environment.
// SITEDEX_EMBED_PROVIDER chooses "gemini" (default) or "openai"; the openai
// provider works against any OpenAI-compatible endpoint via
// SITEDEX_EMBED_HOST and SITEDEX_EMBED_MODEL.
func newEmbedder() (sitedex.Embedder, error) {
	switch provider := os.Getenv("SITEDEX_EMBED_PROVIDER"); provider {
	case "", "gemini":
		return gemini.NewEmbedder(os.Getenv("GEMINI_API_KEY")), nil
	case "openai":
		return openai.NewEmbedder(openai.Config{
			BaseURL: os.Getenv("SITEDEX_EMBED_HOST"),
			Token:   os.Getenv("SITEDEX_EMBED_TOKEN"),
			Model:   os.Getenv("SITEDEX_EMBED_MODEL"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown embed provider %q", provider)
	}
}

func defaultDataDir() string {
	if path := os.Getenv("SITEDEX_DATA"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "sitedex-data"
	}
	dir := filepath.Join(home, ".sitedex")
	_ = os.MkdirAll(dir, 0755)
	return dir
}

func defaultDBPath() string {
	if path := os.Getenv("SITEDEX_DB"); path != "" {
		return path
	}
	return filepath.Join(defaultDataDir(), "sitedex.db")
}
