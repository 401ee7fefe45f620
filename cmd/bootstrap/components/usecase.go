package components

import (
	"aguamarket/internal/domain/offer"
	"aguamarket/internal/pkg/clock"
	"aguamarket/internal/usecase/commands"
	"aguamarket/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		offer.NewStandardPriceQuoter,
		fx.As(new(offer.PriceQuoter)),
	),
	offer.NewFactory,
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewOfferQueries,
		queries.NewRequestQueries,
		queries.NewUserQueries,
		queries.NewSettingsQueries,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewOfferCommands,
		commands.NewRequestCommands,
		commands.NewSettingsCommands,
	),
)
