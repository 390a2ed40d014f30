package sitedex

import "context"

// EmbedSelector selects the artifact an embed run should process. At least
// one field must be set; a session id takes precedence and resolves to the
// first artifact whose filename contains it, in lexical filename order.
type EmbedSelector struct {
	SessionID string `json:"session_id,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

// Orchestrator drives sessions through the scrape-to-embed pipeline.
// Both Start methods return before any background work runs; callers poll
// session status (scrape) or watch logs (embed) for progress.
type Orchestrator interface {
	// StartScrape creates a session with StatusPending and schedules the
	// background fetch stage. The returned session is the caller's stable
	// handle for polling.
	StartScrape(ctx context.Context, req ScrapeRequest) (*Session, error)

	// StartEmbed resolves the selector to exactly one artifact and
	// schedules the background embed stage. Returns the resolved filename.
	// Returns EINVALID if the selector is empty, ENOTFOUND if a session id
	// matches no artifact.
	StartEmbed(ctx context.Context, sel EmbedSelector) (string, error)
}

// Searcher answers semantic queries over indexed chunks.
type Searcher interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
}
