package reservation

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often the sweeper checks for lapsed holds.
const DefaultSweepInterval = time.Second

// Sweeper periodically expires overdue holds across every registered engine.
// It is owned by the server, so holds lapse even when the booker's client
// disconnected; expiry is never client-driven.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	logger   *slog.Logger
	done     chan struct{}
}

func NewSweeper(registry *Registry, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &Sweeper{
		registry: registry,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Wait blocks until the sweep loop has fully stopped.
func (s *Sweeper) Wait() {
	<-s.done
}

func (s *Sweeper) sweep(ctx context.Context) {
	for _, engine := range s.registry.All() {
		if n := engine.ExpireDue(ctx); n > 0 {
			s.logger.Info("expired overdue holds",
				"showtime_id", engine.ShowtimeID(), "count", n)
		}
	}
}
