package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"artisanstudio/internal/http/handlers"
	"artisanstudio/internal/metrics"
	"artisanstudio/internal/middleware"
)

// Options configures the router's middleware stack.
type Options struct {
	Logger         zerolog.Logger
	Metrics        *metrics.Registry
	AllowedOrigins []string
	CountryLookup  middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger, opts.Metrics),
		middleware.Recoverer(handlers.WriteInternalError),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(middleware.DefaultLocale, opts.CountryLookup),
	)

	r.Post("/api/generate-story", app.GenerateStory)
	r.Post("/api/generate-story/export", app.ExportStory)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/metrics", opts.Metrics.Handler())
		r.Get("/stats", app.StatsSummary)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)
	})

	return r
}
