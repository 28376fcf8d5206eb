package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vl4dimr/tesis-system-unap/internal/config"
	"github.com/vl4dimr/tesis-system-unap/internal/server"
)

func newTokenCmd(_ *rootOptions) *cobra.Command {
	var (
		secret  string
		subject string
		hours   int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a service token for the document routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("SERVICE_JWT_SECRET")
			}
			jwtConfig, err := config.NewJWTConfigFrom(secret, hours)
			if err != nil {
				return fmt.Errorf("failed to create JWT config: %w", err)
			}
			token, err := server.NewJWTService(jwtConfig).GenerateToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (default: SERVICE_JWT_SECRET)")
	cmd.Flags().StringVar(&subject, "subject", "plataforma-tesis", "Name of the calling service")
	cmd.Flags().IntVar(&hours, "hours", defaultTokenHours, "Token lifetime in hours")
	return cmd
}
