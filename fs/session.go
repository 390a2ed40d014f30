package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sitedex/sitedex"
)

// Ensure SessionService implements sitedex.SessionService at compile time.
var _ sitedex.SessionService = (*SessionService)(nil)

// SessionService implements sitedex.SessionService with one JSON metadata
// file per session. The pipeline orchestrator is the only writer; status
// polls read concurrently and rely on the atomic metadata writes.
type SessionService struct {
	dataDir string
}

// NewSessionService creates a SessionService rooted at dataDir.
func NewSessionService(dataDir string) *SessionService {
	return &SessionService{dataDir: dataDir}
}

func (s *SessionService) metadataPath(id string) string {
	return filepath.Join(s.dataDir, sessionsDir, sanitizeName(id)+".json")
}

func (s *SessionService) pagesPath(id string) string {
	return filepath.Join(s.dataDir, sessionsDir, sanitizeName(id), pagesDir)
}

// CreateSession allocates an identifier and persists the session with
// StatusPending.
func (s *SessionService) CreateSession(ctx context.Context, req sitedex.ScrapeRequest) (*sitedex.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &sitedex.Session{
		ID:        uuid.New().String(),
		Status:    sitedex.StatusPending,
		URL:       req.URL,
		Purpose:   req.Purpose,
		Mode:      req.Mode,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := writeJSONAtomic(s.metadataPath(session.ID), session); err != nil {
		return nil, sitedex.Errorf(sitedex.EUNAVAILABLE, "saving session metadata: %v", err)
	}

	// Pre-create the page directory so the session owns its namespace
	// before any background work starts.
	if err := os.MkdirAll(s.pagesPath(session.ID), 0o755); err != nil {
		return nil, sitedex.Errorf(sitedex.EUNAVAILABLE, "creating session directory: %v", err)
	}

	return session, nil
}

// UpdateStatus overwrites the status and advances UpdatedAt atomically.
func (s *SessionService) UpdateStatus(ctx context.Context, id string, status sitedex.SessionStatus, errMessage string) error {
	if !status.Valid() {
		return sitedex.Errorf(sitedex.EINVALID, "invalid session status %q", status)
	}

	session, err := s.FindSessionByID(ctx, id)
	if err != nil {
		return err
	}

	session.Status = status
	session.UpdatedAt = time.Now().UTC()
	session.ErrorMessage = ""
	if status == sitedex.StatusFailed {
		session.ErrorMessage = errMessage
	}

	if err := writeJSONAtomic(s.metadataPath(id), session); err != nil {
		return sitedex.Errorf(sitedex.EUNAVAILABLE, "saving session metadata: %v", err)
	}
	return nil
}

// FindSessionByID retrieves a session by ID.
func (s *SessionService) FindSessionByID(ctx context.Context, id string) (*sitedex.Session, error) {
	data, err := os.ReadFile(s.metadataPath(id))
	if os.IsNotExist(err) {
		return nil, sitedex.Errorf(sitedex.ENOTFOUND, "session %q not found", id)
	}
	if err != nil {
		return nil, sitedex.Errorf(sitedex.EUNAVAILABLE, "loading session metadata: %v", err)
	}

	var session sitedex.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, sitedex.Errorf(sitedex.EINTERNAL, "decoding session metadata: %v", err)
	}
	return &session, nil
}

// CountPages returns the number of page records persisted so far.
func (s *SessionService) CountPages(ctx context.Context, id string) (int, error) {
	if _, err := s.FindSessionByID(ctx, id); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(s.pagesPath(id))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, sitedex.Errorf(sitedex.EUNAVAILABLE, "listing session pages: %v", err)
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			count++
		}
	}
	return count, nil
}
