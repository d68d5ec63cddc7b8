// Package scheduler runs periodic maintenance owned by the application
package scheduler

import (
	"context"
	"time"

	"github.com/damon-houk/money-calculator/internal/infrastructure/logger"
)

// ExpirySweeper removes expired entries and reports how many were removed
type ExpirySweeper interface {
	SweepExpired() int
}

// Sweeper calls SweepExpired on a fixed interval until its context ends.
// The rate cache spawns no goroutines itself; the application owns this one.
type Sweeper struct {
	target   ExpirySweeper
	interval time.Duration
	logger   logger.Logger
}

// NewSweeper creates a sweeper; a non-positive interval is replaced by one minute
func NewSweeper(target ExpirySweeper, interval time.Duration, log logger.Logger) *Sweeper {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	if interval <= 0 {
		interval = time.Minute
	}

	return &Sweeper{
		target:   target,
		interval: interval,
		logger:   log.WithField("component", "cache_sweeper"),
	}
}

// Run blocks, sweeping on every tick, and returns when ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Starting cache sweeper", map[string]interface{}{
		"interval": s.interval.String(),
	})

	for {
		select {
		case <-ticker.C:
			removed := s.target.SweepExpired()
			s.logger.Debug("Cache sweep finished", map[string]interface{}{
				"removed": removed,
			})
		case <-ctx.Done():
			s.logger.Info("Stopping cache sweeper", nil)
			return
		}
	}
}
