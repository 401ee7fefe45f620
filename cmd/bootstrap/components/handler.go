package components

import (
	"aguamarket/internal/handler"
	"aguamarket/internal/handler/api"
	"aguamarket/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewRequestHandler,
		api.NewOfferHandler,
		api.NewSettingsHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
