package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"MoviesApp/internal/auth"
	"MoviesApp/internal/config"
)

func newTokenCmd() *cobra.Command {
	var (
		subject  string
		username string
		roles    []string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development token",
		Long:  "Sign an HS256 token with AUTH_SECRET carrying the given roles as client roles. Meant for local testing without an identity provider.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewAuthConfig()
			if err != nil {
				return err
			}
			if cfg.Secret == "" {
				return errors.New("AUTH_SECRET is required")
			}

			rs := make([]auth.Role, len(roles))
			for i, r := range roles {
				rs[i] = auth.Role(r)
			}

			tok, err := auth.NewTokenMaker(cfg.Secret, cfg.Issuer, cfg.ClientID).New(subject, username, rs, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "dev-user", "token subject (sub)")
	cmd.Flags().StringVar(&username, "username", "dev", "preferred_username claim")
	cmd.Flags().StringSliceVar(&roles, "role", []string{string(auth.RoleUser)}, "role to grant (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")

	return cmd
}
