package cli

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MoviesApp/internal/auth"
	"MoviesApp/internal/config"
	"MoviesApp/internal/gateway"
	"MoviesApp/pkg/kit"
)

const serviceGateway = "gateway"

// NewGatewayCmd runs the edge proxy. It is also the entry point of the
// standalone gateway binary.
func NewGatewayCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "gateway",
		Short:         "Run the edge gateway",
		Long:          "Verify bearer tokens at the edge and proxy /api requests to the movies service with identity headers.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGateway(cmd.Context())
		},
	}
}

func runGateway(ctx context.Context) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.Mode != config.AuthModeJWT {
		return errors.New("the gateway verifies tokens itself and needs AUTH_MODE=jwt")
	}

	log := kit.NewLogger(serviceGateway, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	v, err := newVerifier(cfg.Auth)
	if err != nil {
		return err
	}

	h, err := gateway.NewHandler(
		gateway.Deps{
			MoviesURL:     cfg.Gateway.MoviesURL,
			Authenticator: auth.JWTAuthenticator{Verifier: v},
		},
		gateway.HTTPDeps{
			Log:            log,
			Service:        serviceGateway,
			Registry:       prometheus.NewRegistry(),
			MetricsEnabled: cfg.Metrics.Enabled,
			MetricsToken:   cfg.Metrics.Token,
		},
	)
	if err != nil {
		return err
	}

	log.Info("gateway configured", zap.String("movies_url", cfg.Gateway.MoviesURL))

	return kit.RunHTTPServer(ctx, ":"+cfg.Gateway.Port, h, log, kit.ServerOptions{
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout,
	})
}
