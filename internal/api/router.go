package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Dividend-Income-Projector/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Dividend-Income-Projector/internal/api/middleware"
	"github.com/ndewijer/Dividend-Income-Projector/internal/config"
	"github.com/ndewijer/Dividend-Income-Projector/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	dividendService *service.DividendService,
	cfg *config.Config,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		dividendHandler := handlers.NewDividendHandler(dividendService)

		r.Get("/holdings", dividendHandler.Holdings)

		r.Route("/dividends", func(r chi.Router) {
			r.Get("/", dividendHandler.Dividends)
			r.With(custommiddleware.ValidateTickerMiddleware).Get("/{ticker}", dividendHandler.Dividends)
		})

		r.Route("/projection", func(r chi.Router) {
			r.Get("/", dividendHandler.Projection)
			r.Get("/export", dividendHandler.Export)
		})

		r.Post("/refresh", dividendHandler.Refresh)
	})

	return r
}
