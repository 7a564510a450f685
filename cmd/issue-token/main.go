package main

import (
	"fmt"
	"os"
	"time"

	"weld-inspection-db/internal/api"
	"weld-inspection-db/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := newTokenCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:          "issue-token",
		Short:        "Sign a bearer token for the admin API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not set")
			}

			token, err := api.IssueToken(cfg.Auth.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}
