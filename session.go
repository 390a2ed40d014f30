package sitedex

import (
	"context"
	"net/url"
	"time"
)

// SessionStatus represents the lifecycle state of a scrape session.
type SessionStatus string

// Session lifecycle states. A session moves Pending -> Running and
// terminates in either Completed or Failed.
const (
	StatusPending   SessionStatus = "pending"
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "failed"
)

// Valid returns true for a known lifecycle state.
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal returns true once no further transitions are possible.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Session is the durable lifecycle record of one scrape request.
// URL, Purpose and Mode are captured at creation and never change;
// only the orchestrator mutates Status.
type Session struct {
	ID           string        `json:"id"`
	Status       SessionStatus `json:"status"`
	URL          string        `json:"url"`
	Purpose      string        `json:"purpose"`
	Mode         string        `json:"mode"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}

// ScrapeRequest holds the immutable inputs of a scrape session.
type ScrapeRequest struct {
	URL     string `json:"url"`
	Purpose string `json:"purpose,omitempty"`
	Mode    string `json:"mode,omitempty"`

	// Collection overrides the vector collection name derived from the
	// site's host. Optional.
	Collection string `json:"collection,omitempty"`
}

// Validate returns an error if the request cannot start a session.
func (r *ScrapeRequest) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "url required")
	}
	u, err := url.Parse(r.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Errorf(EINVALID, "invalid url %q", r.URL)
	}
	return nil
}

// Domain returns the host part of the request URL, or "" if unparseable.
func (r *ScrapeRequest) Domain() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// SessionService manages session identity and lifecycle state.
// The pipeline orchestrator is the only writer; status polls may read
// concurrently and must observe either the pre- or post-update record.
type SessionService interface {
	// CreateSession allocates an identifier and persists the session with
	// StatusPending. Returns EUNAVAILABLE if the backing store is
	// unreachable.
	CreateSession(ctx context.Context, req ScrapeRequest) (*Session, error)

	// UpdateStatus overwrites the status and advances UpdatedAt atomically.
	// errMessage is recorded only for StatusFailed.
	// Returns ENOTFOUND if the session does not exist.
	UpdateStatus(ctx context.Context, id string, status SessionStatus, errMessage string) error

	// FindSessionByID retrieves a session by ID.
	// Returns ENOTFOUND if the session does not exist.
	FindSessionByID(ctx context.Context, id string) (*Session, error)

	// CountPages returns the number of page records persisted so far for
	// the session, for progress reporting.
	CountPages(ctx context.Context, id string) (int, error)
}
