package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MoviesApp/internal/auth"
	"MoviesApp/internal/config"
	"MoviesApp/internal/database"
	"MoviesApp/internal/movies"
	"MoviesApp/internal/userextras"
	"MoviesApp/pkg/kit"
)

const serviceMovies = "movies"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the movies API",
		Long:  "Serve /api/movies and /api/userextras until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	log := kit.NewLogger(serviceMovies, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	stores, err := openStores(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer stores.close(log)

	if cfg.Store.Seed {
		n, err := stores.movies.Seed(ctx, movies.DefaultSeed())
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		if n > 0 {
			log.Info("catalog seeded", zap.Int("movies", n))
		}
	}

	authn, err := newAuthenticator(cfg.Auth)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gate := auth.NewGate(auth.DefaultPolicy(), log, reg)

	extras := &userextras.Server{
		Store:          stores.extras,
		Gate:           gate,
		Log:            log,
		AvatarsBaseURL: cfg.Avatars.BaseURL,
	}
	s := &movies.Server{
		Service: movies.NewService(stores.movies),
		Gate:    gate,
		Log:     log,
	}

	h := movies.NewHandler(s, movies.HTTPDeps{
		Log:            log,
		Service:        serviceMovies,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
		Authenticator:  authn,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		Extras:         extras.Routes(),
	})

	log.Info("movies configured",
		zap.String("store", cfg.Store.Driver),
		zap.String("auth_mode", cfg.Auth.Mode),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)

	return kit.RunHTTPServer(ctx, ":"+cfg.HTTP.Port, h, log, kit.ServerOptions{
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout,
	})
}

type storeSet struct {
	movies movies.Store
	extras userextras.Store
	db     *sql.DB
}

func (s storeSet) close(log *zap.Logger) {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		log.Warn("closing database", zap.Error(err))
	}
}

func openStores(ctx context.Context, cfg config.Store) (storeSet, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return storeSet{movies: movies.NewMemStore(), extras: userextras.NewMemStore()}, nil
	case config.DriverPostgres:
		db, err := database.Open(ctx, cfg.DSN)
		if err != nil {
			return storeSet{}, err
		}
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return storeSet{}, err
		}
		return storeSet{
			movies: movies.NewPostgresStore(db),
			extras: userextras.NewPostgresStore(db),
			db:     db,
		}, nil
	default:
		return storeSet{}, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
