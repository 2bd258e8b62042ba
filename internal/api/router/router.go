package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/skysweep/skysweep/internal/api/handlers"
	"github.com/skysweep/skysweep/internal/api/middleware"
	"github.com/skysweep/skysweep/internal/config"
	"github.com/skysweep/skysweep/internal/pkg/logger"
	"github.com/skysweep/skysweep/internal/pkg/metrics"
)

type Handlers struct {
	Health *handlers.HealthHandler
	Rule   *handlers.RuleHandler
	Orphan *handlers.OrphanHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200
	r.Use(metrics.Middleware)

	// Operational endpoints
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())

	// Detection rules
	r.Route("/api/v1/rules", func(r chi.Router) {
		r.Get("/", h.Rule.List)
		r.Delete("/", h.Rule.ResetAll)
		r.Get("/{resourceType}", h.Rule.Get)
		r.Delete("/{resourceType}", h.Rule.Reset)
		r.Patch("/{resourceType}/settings", h.Rule.UpdateSetting)
		r.Put("/{resourceType}/settings", h.Rule.ReplaceSettings)
	})

	// Orphaned resources
	r.Route("/api/v1/orphans", func(r chi.Router) {
		r.Get("/", h.Orphan.List)
		r.Get("/summary", h.Orphan.Summary)
	})

	return r
}
