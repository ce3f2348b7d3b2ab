// Package sweep drives the periodic auto-completion pass. Read paths also
// run the sweep defensively, so this scheduler is a backstop for quiet hours
// rather than the sole trigger.
package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper runs one auto-completion pass and reports how many bookings it
// completed.
type Sweeper interface {
	RunAutoCompletionSweep(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler invokes the sweeper on a fixed interval until stopped.
type Scheduler struct {
	interval time.Duration
	sweeper  Sweeper
	logger   *zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewScheduler creates a scheduler. An interval of zero or less falls back
// to one minute.
func NewScheduler(interval time.Duration, sweeper Sweeper, logger *zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		interval: interval,
		sweeper:  sweeper,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the scheduler loop. It blocks until the context is cancelled
// or Stop is called; run it in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info().Dur("interval", s.interval).Msg("auto-completion scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("auto-completion scheduler stopped by context")
			return
		case <-s.stopCh:
			s.logger.Info().Msg("auto-completion scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.sweeper.RunAutoCompletionSweep(ctx, time.Now()); err != nil {
				s.logger.Error().Err(err).Msg("auto-completion sweep failed")
			}
		}
	}
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
}
