// Package pipeline drives scrape sessions through fetch, chunk, embed and
// index stages. Background work runs on a bounded worker pool so the HTTP
// and CLI surfaces return immediately.
package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sitedex/sitedex"
)

// Submitter schedules fire-and-forget background tasks.
type Submitter interface {
	Submit(task func()) error
}

// Ensure Pool implements Submitter at compile time.
var _ Submitter = (*Pool)(nil)

// Pool is a bounded worker pool for background pipeline stages. A panicking
// task is logged and absorbed so one bad session cannot take down the
// process.
type Pool struct {
	pool *ants.Pool
}

// NewPool creates a pool with the given number of workers. Size <= 0 means
// half the CPUs, with a minimum of 1.
func NewPool(size int, logger *slog.Logger) (*Pool, error) {
	if size <= 0 {
		size = runtime.NumCPU() / 2
		if size < 1 {
			size = 1
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	inner, err := ants.NewPool(size, ants.WithPanicHandler(func(v any) {
		logger.Error("background task panicked", "panic", v)
	}))
	if err != nil {
		return nil, err
	}

	return &Pool{pool: inner}, nil
}

// Submit schedules a task. Returns EUNAVAILABLE if the pool has been
// released.
func (p *Pool) Submit(task func()) error {
	if err := p.pool.Submit(task); err != nil {
		return sitedex.Errorf(sitedex.EUNAVAILABLE, "failed to submit background task: %v", err)
	}
	return nil
}

// Wait blocks until no tasks are running or the context is done. Callers
// that submit and then wait should allow a short grace period for the task
// to be picked up.
func (p *Pool) Wait(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p.pool.Running() == 0 {
				return nil
			}
		}
	}
}

// Release shuts the pool down. Pending tasks are abandoned.
func (p *Pool) Release() {
	p.pool.Release()
}
