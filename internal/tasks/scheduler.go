package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/artx/internal/shared"
)

// Scheduler runs the engine's operations on fixed intervals.
type Scheduler struct {
	engine      *SyncEngine
	artistEvery time.Duration
	tokenEvery  time.Duration
	timeout     time.Duration
	logger      *log.Logger
}

// NewScheduler creates a Scheduler that syncs artists every artistEvery and
// checks credential expiry every tokenEvery. Each work item is bounded by
// timeout.
func NewScheduler(engine *SyncEngine, artistEvery, tokenEvery, timeout time.Duration, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Scheduler{
		engine:      engine,
		artistEvery: artistEvery,
		tokenEvery:  tokenEvery,
		timeout:     timeout,
		logger:      logger,
	}
}

// Run blocks, dispatching work items until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	artistTicker := time.NewTicker(s.artistEvery)
	defer artistTicker.Stop()
	tokenTicker := time.NewTicker(s.tokenEvery)
	defer tokenTicker.Stop()

	s.logger.Info("scheduler started", "artist_interval", s.artistEvery, "token_interval", s.tokenEvery)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-tokenTicker.C:
			s.runOnce(ctx, "refresh_token", s.engine.RefreshIfExpired)
		case <-artistTicker.C:
			s.runOnce(ctx, "update_artists", func(ctx context.Context) error {
				_, err := s.engine.SyncArtists(ctx)
				return err
			})
		}
	}
}

// runOnce executes a single self-contained work item with its own deadline.
// Failures are logged and left for the next tick to retry.
func (s *Scheduler) runOnce(ctx context.Context, name string, op func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Info("running task", "task", name)
	if err := op(ctx); err != nil {
		s.logger.Warn("task failed", "task", name, "err", err)
	}
}
