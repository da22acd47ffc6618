package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
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
}

type Deps struct {
	MoviesURL string
	// Authenticator verifies the caller at the edge. The movies service behind
	// the gateway trusts the identity headers it injects.
	Authenticator auth.Authenticator
}

const (
	readyTimeout      = 2 * time.Second
	readyProbeTimeout = 700 * time.Millisecond
)

var readyClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	},
}

func NewHandler(deps Deps, httpDeps HTTPDeps) (http.Handler, error) {
	if httpDeps.Log == nil {
		httpDeps.Log = zap.NewNop()
	}
	if deps.Authenticator == nil {
		deps.Authenticator = auth.Anonymous{}
	}

	moviesProxy, err := NewReverseProxy(deps.MoviesURL, httpDeps.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build movies proxy: %w", err)
	}
	moviesReadyURL, err := url.JoinPath(deps.MoviesURL, "readyz")
	if err != nil {
		return nil, fmt.Errorf("failed to build movies ready url: %w", err)
	}

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	kit.SetupMetrics(r, kit.MetricsDeps{
		Service:  httpDeps.Service,
		Registry: httpDeps.Registry,
		Enabled:  httpDeps.MetricsEnabled,
		Token:    httpDeps.MetricsToken,
	})

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(moviesReadyURL, httpDeps.Log))

	r.Group(func(pr chi.Router) {
		pr.Use(EdgeIdentity(deps.Authenticator, httpDeps.Log))
		pr.Handle("/api/movies", moviesProxy)
		pr.Handle("/api/movies/*", moviesProxy)
		pr.Handle("/api/userextras/*", moviesProxy)
	})

	return r, nil
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(moviesReadyURL string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := checkReady(ctx, moviesReadyURL); err != nil {
			log.Warn("readyz failed: movies", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "movies not ready", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func checkReady(ctx context.Context, target string) error {
	cctx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}

	resp, err := readyClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status=%d", resp.StatusCode)
	}

	return nil
}
