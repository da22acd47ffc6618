package movies

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MoviesApp/internal/auth"
	"MoviesApp/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	Authenticator auth.Authenticator
	CORSOrigins   []string

	// Extras is mounted at /api/userextras when set.
	Extras http.Handler
}

// NewHandler assembles the request pipeline:
// request id, recover, log, metrics, CORS, authenticate, then per-route gate and handler.
func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Authenticator == nil {
		deps.Authenticator = auth.Anonymous{}
	}
	if s.Log == nil {
		s.Log = deps.Log
	}
	if s.Gate == nil {
		var reg prometheus.Registerer
		if deps.Registry != nil {
			reg = deps.Registry
		}
		s.Gate = auth.NewGate(auth.DefaultPolicy(), deps.Log, reg)
	}

	r := chi.NewRouter()

	setupMiddleware(r, deps)
	kit.SetupMetrics(r, kit.MetricsDeps{
		Service:  deps.Service,
		Registry: deps.Registry,
		Enabled:  deps.MetricsEnabled,
		Token:    deps.MetricsToken,
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.Ready)

	r.Group(func(api chi.Router) {
		api.Use(cors.Handler(corsOptions(deps.CORSOrigins)))
		api.Use(auth.Authenticate(deps.Authenticator, deps.Log))

		api.Mount("/api/movies", s.Routes())
		if deps.Extras != nil {
			api.Mount("/api/userextras", deps.Extras)
		}
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{chimw.RequestIDHeader},
		MaxAge:         300,
	}
}
