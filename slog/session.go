package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/sitedex/sitedex"
)

// Ensure LoggingSessionService implements sitedex.SessionService.
var _ sitedex.SessionService = (*LoggingSessionService)(nil)

// LoggingSessionService wraps a SessionService with operation logging.
// Status transitions are the pipeline's main observable, so every update is
// logged at info level.
type LoggingSessionService struct {
	next   sitedex.SessionService
	logger *slog.Logger
}

// NewLoggingSessionService creates a new LoggingSessionService.
func NewLoggingSessionService(next sitedex.SessionService, logger *slog.Logger) *LoggingSessionService {
	return &LoggingSessionService{next: next, logger: logger}
}

// CreateSession delegates to the wrapped service and logs the operation.
func (s *LoggingSessionService) CreateSession(ctx context.Context, req sitedex.ScrapeRequest) (session *sitedex.Session, err error) {
	defer func(begin time.Time) {
		id := ""
		if session != nil {
			id = session.ID
		}
		s.logger.Info("session created",
			"sessionID", id,
			"url", req.URL,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateSession(ctx, req)
}

// UpdateStatus delegates to the wrapped service and logs the transition.
func (s *LoggingSessionService) UpdateStatus(ctx context.Context, id string, status sitedex.SessionStatus, errMessage string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("session status updated",
			"sessionID", id,
			"status", status,
			"message", errMessage,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpdateStatus(ctx, id, status, errMessage)
}

// FindSessionByID delegates to the wrapped service and logs at debug level,
// since status polls are frequent.
func (s *LoggingSessionService) FindSessionByID(ctx context.Context, id string) (session *sitedex.Session, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("session lookup",
			"sessionID", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindSessionByID(ctx, id)
}

// CountPages delegates to the wrapped service.
func (s *LoggingSessionService) CountPages(ctx context.Context, id string) (int, error) {
	return s.next.CountPages(ctx, id)
}
