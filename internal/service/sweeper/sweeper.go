package sweeper

import (
	"context"
	"time"

	"github.com/openrides/openrides/internal/service/ledger"
	"github.com/openrides/openrides/pkg/logger"
	"github.com/openrides/openrides/pkg/monitoring"
)

// Sweeper periodically expires stale open requests
type Sweeper struct {
	ledger     *ledger.Service
	logger     *logger.Logger
	monitoring *monitoring.App
	interval   time.Duration
}

// New creates a new sweeper
func New(l *ledger.Service, log *logger.Logger, mon *monitoring.App, interval time.Duration) *Sweeper {
	return &Sweeper{
		ledger:     l,
		logger:     log,
		monitoring: mon,
		interval:   interval,
	}
}

// Run sweeps on the configured interval until the context is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started",
		logger.String("interval", s.interval.String()))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one expiry pass
func (s *Sweeper) Sweep(ctx context.Context) {
	count, err := s.ledger.ExpireStale(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", logger.Err(err))
		return
	}
	if count > 0 {
		s.monitoring.RecordRequestsExpired(count)
		s.logger.Info("expired stale requests", logger.Int("count", count))
	}
}
