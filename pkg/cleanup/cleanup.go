// Package cleanup provides the background sweeper that removes expired
// wizard records.
//
// Backends with a native TTL, like Redis, expire records on their own.
// The database backend keeps records until something deletes them, so
// applications run a Sweeper in a dedicated goroutine:
//
//	sweeper := cleanup.New(repo, api.MustTTL(24*3600))
//	go sweeper.Run(ctx)
//
// A single sweep can also be triggered from a cron-style job via
// SweepOnce.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/petrijr/wizard/pkg/api"
)

// Sweeper periodically deletes records whose last update is older than
// the configured TTL.
type Sweeper struct {
	repo     api.ExpiringRepository
	ttl      api.TTL
	interval time.Duration
	logger   *slog.Logger
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithInterval sets the time between sweeps. Defaults to one hour.
func WithInterval(interval time.Duration) Option {
	return func(s *Sweeper) { s.interval = interval }
}

// WithLogger sets the logger sweeps report through. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) { s.logger = logger }
}

// New creates a Sweeper over the given repository. ttl decides how long
// an untouched wizard survives.
func New(repo api.ExpiringRepository, ttl api.TTL, opts ...Option) *Sweeper {
	s := &Sweeper{
		repo:     repo,
		ttl:      ttl,
		interval: time.Hour,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SweepOnce deletes every expired record and returns how many were
// removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	deleted, err := s.repo.DeleteExpired(ctx, s.ttl.ExpiresAfter())
	if err != nil {
		s.logger.ErrorContext(ctx, "wizard_sweep_failed", slog.Any("error", err))
		return 0, err
	}
	if deleted > 0 {
		s.logger.InfoContext(ctx, "expired_wizards_removed", slog.Int("count", deleted))
	}
	return deleted, nil
}

// Run sweeps on the configured interval until ctx is cancelled. A failed
// sweep is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, _ = s.SweepOnce(ctx)
		}
	}
}
