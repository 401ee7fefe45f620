package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"aguamarket/internal/domain/user"
	"aguamarket/internal/handler/api"
	"aguamarket/internal/handler/middleware"
	"aguamarket/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	authHandler *api.AuthHandler,
	requestHandler *api.RequestHandler,
	offerHandler *api.OfferHandler,
	settingsHandler *api.SettingsHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, authHandler, requestHandler, offerHandler, settingsHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	authHandler *api.AuthHandler,
	requestHandler *api.RequestHandler,
	offerHandler *api.OfferHandler,
	settingsHandler *api.SettingsHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
				{Method: http.MethodPost, Path: "/register", Handler: authHandler.Register},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodGet, Path: "/me", Handler: authHandler.Me},
			})
		}

		requests := apiGroup.Group("/requests")
		requests.Use(authMiddleware.RequireAuth())
		{
			consumerOnly := authMiddleware.RequireRole(user.RoleConsumer)
			providerOnly := authMiddleware.RequireRole(user.RoleProvider)

			addRoutes(requests, []route{
				{Method: http.MethodPost, Path: "", Handler: requestHandler.CreateRequest, Mw: []gin.HandlerFunc{consumerOnly}},
				{Method: http.MethodGet, Path: "", Handler: requestHandler.ListMyRequests, Mw: []gin.HandlerFunc{consumerOnly}},
				{Method: http.MethodGet, Path: "/open", Handler: requestHandler.ListOpenRequests, Mw: []gin.HandlerFunc{providerOnly}},
				{Method: http.MethodGet, Path: "/:id", Handler: requestHandler.GetRequest},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: requestHandler.CancelRequest, Mw: []gin.HandlerFunc{consumerOnly}},
				{Method: http.MethodPost, Path: "/:id/transit", Handler: requestHandler.StartDelivery, Mw: []gin.HandlerFunc{providerOnly}},
				{Method: http.MethodPost, Path: "/:id/delivered", Handler: requestHandler.CompleteDelivery, Mw: []gin.HandlerFunc{providerOnly}},
				{Method: http.MethodPost, Path: "/:id/offers", Handler: offerHandler.SubmitOffer, Mw: []gin.HandlerFunc{providerOnly}},
				{Method: http.MethodGet, Path: "/:id/offers", Handler: offerHandler.ListOffersForRequest, Mw: []gin.HandlerFunc{consumerOnly}},
				{Method: http.MethodPost, Path: "/:id/offers/:offerId/select", Handler: offerHandler.SelectOffer, Mw: []gin.HandlerFunc{consumerOnly}},
			})
		}

		offers := apiGroup.Group("/offers")
		offers.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(user.RoleProvider))
		{
			addRoutes(offers, []route{
				{Method: http.MethodGet, Path: "", Handler: offerHandler.ListMyOffers},
				{Method: http.MethodPost, Path: "/:id/withdraw", Handler: offerHandler.WithdrawOffer},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(user.RoleAdmin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/settings", Handler: settingsHandler.GetSettings},
				{Method: http.MethodPatch, Path: "/settings", Handler: settingsHandler.UpdateSettings},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
