package sitedex

import "context"

// PageRecord is one fetched and normalized page. Records are owned by the
// session that produced them and are read-only once persisted.
type PageRecord struct {
	PageName    string `json:"pageName"`
	PageURL     string `json:"pageUrl"`
	Markdown    string `json:"markdownContent"`
	ContentHash string `json:"contentHash,omitempty"`
}

// Artifact is the combined normalized-content document produced by a
// completed or partial fetch stage. The embed stage consumes artifacts.
type Artifact struct {
	// Domain is the host the pages were scraped from.
	Domain string `json:"domain"`

	// Collection names the vector collection the artifact embeds into.
	// One collection aggregates content across sessions for the same site.
	Collection string `json:"collection"`

	Pages []PageRecord `json:"pages"`
}

// Validate returns an error if the artifact contains invalid fields.
func (a *Artifact) Validate() error {
	if a.Domain == "" {
		return Errorf(EINVALID, "artifact domain required")
	}
	if a.Collection == "" {
		return Errorf(EINVALID, "artifact collection required")
	}
	return nil
}

// ArtifactStore persists page records and artifacts, keyed by session id
// and filename. Each session owns a disjoint namespace; artifacts are never
// shared across sessions.
type ArtifactStore interface {
	// SavePage persists a single page record for the session at the given
	// ordinal position. Pages are written as they arrive so progress is
	// observable mid-run.
	SavePage(ctx context.Context, sessionID string, position int, page PageRecord) error

	// SaveArtifact persists the combined artifact for the session and
	// returns the filename it was stored under. The filename contains the
	// session id so the embed stage can resolve it by selector.
	SaveArtifact(ctx context.Context, sessionID string, artifact *Artifact) (string, error)

	// LoadArtifact loads an artifact by filename.
	// Returns ENOTFOUND if no such artifact exists.
	LoadArtifact(ctx context.Context, filename string) (*Artifact, error)

	// ListArtifacts returns all artifact filenames in lexical order, so
	// selector resolution is deterministic.
	ListArtifacts(ctx context.Context) ([]string, error)
}
