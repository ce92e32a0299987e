package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moviegen/internal/http/handlers"
	"moviegen/internal/infra"
	"moviegen/internal/middleware"
)

// NewRouter assembles the gateway server's HTTP surface.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger, registry *prometheus.Registry) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/v1/healthz", app.Health)
	r.Post("/api/generate", app.Generate)

	if registry != nil {
		r.Method(stdhttp.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	return r
}
