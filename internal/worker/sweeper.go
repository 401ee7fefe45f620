package worker

import (
	"context"
	"log/slog"
	"time"

	"aguamarket/internal/pkg/metrics"
	"aguamarket/internal/usecase/commands"
)

// Sweeper periodically settles time-based transitions: overdue active
// offers flip to expired and offerless pending requests to no_offers.
// Reads mask expiry themselves, so the cadence only bounds how stale
// the persisted rows may get.
type Sweeper struct {
	offers   commands.OfferCommands
	requests commands.RequestCommands
	interval time.Duration
}

func NewSweeper(offers commands.OfferCommands, requests commands.RequestCommands, interval time.Duration) *Sweeper {
	return &Sweeper{
		offers:   offers,
		requests: requests,
		interval: interval,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	metrics.SweepRunsTotal.Inc()

	if _, err := s.offers.ExpireDue(ctx); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("sweep_expire_offers").Inc()
		slog.Error("offer expiry sweep failed", "error", err.Error())
	}

	if _, err := s.requests.TimeOutStale(ctx); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("sweep_timeout_requests").Inc()
		slog.Error("request timeout sweep failed", "error", err.Error())
	}
}
