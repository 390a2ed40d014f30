package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/sitedex/sitedex"
	"github.com/sitedex/sitedex/pipeline"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx          context.Context
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	Sessions     sitedex.SessionService
	Artifacts    sitedex.ArtifactStore
	Orchestrator sitedex.Orchestrator
	Searcher     sitedex.Searcher
	Pool         *pipeline.Pool
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Serve  ServeCmd  `cmd:"" help:"Run the HTTP API server"`
	Scrape ScrapeCmd `cmd:"" help:"Scrape a website into a markdown artifact"`
	Status StatusCmd `cmd:"" help:"Show a scrape session's status and progress"`
	Embed  EmbedCmd  `cmd:"" help:"Embed a scraped artifact into the vector index"`
	Search SearchCmd `cmd:"" help:"Search indexed content"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8000" help:"Listen address"`
	JS   bool   `help:"Render pages with headless Chrome"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL        string `arg:"" help:"Root URL of the site to scrape"`
	Purpose    string `help:"Free-form note on why the site is scraped"`
	Mode       string `help:"Scrape mode label recorded on the session"`
	Collection string `help:"Vector collection name (defaults to the site host)"`
	JS         bool   `help:"Render pages with headless Chrome"`
	NoWait     bool   `help:"Return immediately instead of waiting for completion"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct {
	SessionID string `arg:"" help:"Session ID"`
}

// EmbedCmd is the "embed" subcommand.
type EmbedCmd struct {
	Session string `help:"Session ID to embed the artifact of"`
	File    string `help:"Artifact filename to embed"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query      string `arg:"" help:"Search query"`
	Collection string `required:"" help:"Vector collection to search"`
	Domain     string `help:"Restrict results to one domain"`
	Limit      int    `default:"5" help:"Maximum number of results"`
}
