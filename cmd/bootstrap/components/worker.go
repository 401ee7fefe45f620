package components

import (
	"context"

	"aguamarket/internal/infra/events"
	"aguamarket/internal/pkg/clock"
	"aguamarket/internal/pkg/config"
	"aguamarket/internal/usecase/commands"
	"aguamarket/internal/usecase/shared"
	"aguamarket/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewSweeper,
		NewDispatcher,
	),
	fx.Invoke(StartWorkers),
)

func NewSweeper(offers commands.OfferCommands, requests commands.RequestCommands, cfg config.Config) *worker.Sweeper {
	return worker.NewSweeper(offers, requests, cfg.Market.SweepInterval)
}

func NewDispatcher(uow shared.UnitOfWork, publisher events.Publisher, clk clock.Clock, cfg config.Config) *worker.Dispatcher {
	return worker.NewDispatcher(uow, publisher, clk, cfg.Market.DispatchInterval, cfg.Market.DispatchBatch)
}

func StartWorkers(lc fx.Lifecycle, sweeper *worker.Sweeper, dispatcher *worker.Dispatcher) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go sweeper.Run(ctx)
			go dispatcher.Run(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
