package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/patrimonio-app/patrimonio/internal/assets"
	"github.com/patrimonio-app/patrimonio/internal/auth"
	"github.com/patrimonio-app/patrimonio/internal/categories"
	"github.com/patrimonio-app/patrimonio/internal/observability"
	"github.com/patrimonio-app/patrimonio/internal/platform/httpx"
	"github.com/patrimonio-app/patrimonio/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Authenticator     *auth.Authenticator
	AuthHandler       *auth.Handler
	AssetsHandler     *assets.Handler
	CategoriesHandler *categories.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(r)
		}
		r.Group(func(r chi.Router) {
			if params.Authenticator != nil {
				r.Use(params.Authenticator.Middleware)
			}
			if params.AuthHandler != nil {
				params.AuthHandler.MountAuthenticatedRoutes(r)
			}
			if params.AssetsHandler != nil {
				params.AssetsHandler.MountRoutes(r)
			}
			if params.CategoriesHandler != nil {
				params.CategoriesHandler.MountRoutes(r)
			}
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
