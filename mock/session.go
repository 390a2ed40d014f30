// Package mock provides function-field mock implementations of the sitedex
// service interfaces for tests.
package mock

import (
	"context"

	"github.com/sitedex/sitedex"
)

var _ sitedex.SessionService = (*SessionService)(nil)

// SessionService is a mock implementation of sitedex.SessionService.
type SessionService struct {
	CreateSessionFn   func(ctx context.Context, req sitedex.ScrapeRequest) (*sitedex.Session, error)
	UpdateStatusFn    func(ctx context.Context, id string, status sitedex.SessionStatus, errMessage string) error
	FindSessionByIDFn func(ctx context.Context, id string) (*sitedex.Session, error)
	CountPagesFn      func(ctx context.Context, id string) (int, error)
}

func (s *SessionService) CreateSession(ctx context.Context, req sitedex.ScrapeRequest) (*sitedex.Session, error) {
	return s.CreateSessionFn(ctx, req)
}

func (s *SessionService) UpdateStatus(ctx context.Context, id string, status sitedex.SessionStatus, errMessage string) error {
	return s.UpdateStatusFn(ctx, id, status, errMessage)
}

func (s *SessionService) FindSessionByID(ctx context.Context, id string) (*sitedex.Session, error) {
	return s.FindSessionByIDFn(ctx, id)
}

func (s *SessionService) CountPages(ctx context.Context, id string) (int, error) {
	return s.CountPagesFn(ctx, id)
}
