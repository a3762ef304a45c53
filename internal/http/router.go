package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"agent-relay/internal/handlers"
	"agent-relay/internal/service"
	"agent-relay/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DecisionService service.DecisionService
	ModelCatalog    handlers.ModelCatalog
	// Journal is nil when the decision journal is disabled.
	Journal   storage.DecisionStore
	ModelName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	decideHandler := handlers.NewDecideHandler(deps.DecisionService)

	var journal handlers.Pinger
	if deps.Journal != nil {
		journal = deps.Journal
	}
	healthHandler := handlers.NewHealthHandler(deps.ModelCatalog, journal, deps.ModelName)

	r.Route("/agent", func(r chi.Router) {
		r.Method(http.MethodPost, "/decide", decideHandler)
	})

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		if deps.Journal != nil {
			r.Method(http.MethodGet, "/stats", handlers.NewStatsHandler(deps.Journal))
		}
	})

	return r
}
