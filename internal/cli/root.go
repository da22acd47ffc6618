// Package cli defines the cobra command tree for the movies service and its gateway.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"MoviesApp/internal/auth"
	"MoviesApp/internal/config"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// NewRootCmd creates the root command. Configuration comes from the
// environment; see internal/config.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "movies",
		Short:         "Movie catalog API",
		Long:          "A movie catalog with comments and per-user avatars. Reads are public; mutations are gated by role.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		NewGatewayCmd(),
		newMigrateCmd(),
		newTokenCmd(),
	)

	return root
}

// newVerifier builds the token verifier for cfg regardless of its mode.
func newVerifier(cfg config.Auth) (*auth.Verifier, error) {
	return auth.NewVerifier(auth.VerifierConfig{
		Secret:         cfg.Secret,
		RealmPublicKey: cfg.RealmPublicKey,
		Issuer:         cfg.Issuer,
		ClientID:       cfg.ClientID,
	})
}

// newAuthenticator picks how the service learns who is calling.
func newAuthenticator(cfg config.Auth) (auth.Authenticator, error) {
	switch cfg.Mode {
	case config.AuthModeHeaders:
		return auth.HeaderAuthenticator{}, nil
	case config.AuthModeJWT:
		v, err := newVerifier(cfg)
		if err != nil {
			return nil, err
		}
		return auth.JWTAuthenticator{Verifier: v}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
