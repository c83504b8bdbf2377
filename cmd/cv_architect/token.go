package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-architect/internal/config"
	"github.com/jonathan/cv-architect/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an API bearer token signed with JWT_SECRET",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		jwtCfg, err := config.NewJWTConfig()
		if errors.Is(err, config.ErrAuthDisabled) {
			return fmt.Errorf("JWT_SECRET is not set; the API runs without authentication")
		}
		if err != nil {
			return err
		}

		token, expiresAt, err := server.NewJWTService(jwtCfg).GenerateToken()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Expires %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
