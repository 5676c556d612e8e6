package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stock-analyzer/config"
)

// maxAnalyzeBody caps the analyze form or JSON body
const maxAnalyzeBody = 4 << 10

// NewRouter mounts the dashboard, the API and /metrics
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)

	r.Get("/", h.HandleIndex)
	r.Get("/index.html", h.HandleIndex)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)

		r.Get("/health", h.HandleHealth)
		r.Get("/symbols", h.HandleSearchSymbols)

		// Only analysis runs under the pipeline deadline
		r.With(
			middleware.Timeout(time.Duration(cfg.Analysis.TimeoutSeconds)*time.Second),
			middleware.RequestSize(maxAnalyzeBody),
			middleware.AllowContentType("application/json", "application/x-www-form-urlencoded"),
		).Post("/analyze", h.HandleAnalyzeStock)

		r.Get("/reports/{id}", h.HandleDownloadReport)
	})

	return r
}
