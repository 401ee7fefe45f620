package worker

import (
	"context"
	"log/slog"
	"time"

	"aguamarket/internal/infra/events"
	"aguamarket/internal/pkg/clock"
	"aguamarket/internal/pkg/metrics"
	"aguamarket/internal/usecase/shared"
)

const maxDispatchAttempts = 5

// Dispatcher drains the notification outbox: due jobs are claimed in a
// short transaction, published to the realtime channel outside it, then
// marked done or failed in a second transaction. Jobs that keep failing
// are parked as failed after maxDispatchAttempts.
type Dispatcher struct {
	uow       shared.UnitOfWork
	publisher events.Publisher
	clock     clock.Clock
	interval  time.Duration
	batchSize int
}

func NewDispatcher(
	uow shared.UnitOfWork,
	publisher events.Publisher,
	clk clock.Clock,
	interval time.Duration,
	batchSize int,
) *Dispatcher {
	return &Dispatcher{
		uow:       uow,
		publisher: publisher,
		clock:     clk,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	slog.Info("notification dispatcher started", "interval", d.interval, "batch", d.batchSize)
	for {
		select {
		case <-ctx.Done():
			slog.Info("notification dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.dispatchBatch(ctx); err != nil {
				slog.Error("notification dispatch pass failed", "error", err.Error())
			}
		}
	}
}

func (d *Dispatcher) dispatchBatch(ctx context.Context) error {
	var jobs []shared.NotificationJob
	err := d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var claimErr error
		jobs, claimErr = tx.Notifications().ClaimDue(ctx, tx.DB(), d.clock.Now(), d.batchSize)
		return claimErr
	})
	if err != nil || len(jobs) == 0 {
		return err
	}

	// Publishing happens outside any transaction so a slow broker cannot
	// hold row locks or pin a DB connection for the whole batch. Delivery
	// stays at-least-once: a crash between publish and mark re-sends.
	pubErrs := make([]error, len(jobs))
	for i, job := range jobs {
		pubErrs[i] = d.publisher.Publish(ctx, job.Topic, job.Payload)
	}

	return d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		repo := tx.Notifications()
		for i, job := range jobs {
			if pubErr := pubErrs[i]; pubErr != nil {
				metrics.NotificationDispatchErrorsTotal.Inc()
				slog.Warn("failed to publish notification",
					"job_id", job.ID, "topic", job.Topic, "error", pubErr.Error())
				if err := repo.MarkFailed(ctx, tx.DB(), job.ID, pubErr.Error(), maxDispatchAttempts); err != nil {
					return err
				}
				continue
			}
			if err := repo.MarkDone(ctx, tx.DB(), job.ID); err != nil {
				return err
			}
		}
		return nil
	})
}
