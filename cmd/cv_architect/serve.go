package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-architect/internal/config"
	"github.com/jonathan/cv-architect/internal/server"
	"github.com/jonathan/cv-architect/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the analysis, history, report and headshot endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	p, err := newPipeline(ctx, settings, log)
	if err != nil {
		return err
	}
	defer p.Close()

	jwtCfg, err := config.NewJWTConfig()
	switch {
	case errors.Is(err, config.ErrAuthDisabled):
		jwtCfg = nil
		log.Warn("JWT_SECRET not set, API authentication disabled")
	case err != nil:
		return fmt.Errorf("invalid auth configuration: %w", err)
	}
	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("invalid auth configuration: %w", err)
	}

	limiter := ratelimit.NewLimiter(ratelimit.LoadConfig(os.Getenv))
	defer limiter.Stop()

	port := settings.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	srv, err := server.New(server.Config{
		Port:        port,
		Controller:  p.controller,
		History:     p.store,
		PDF:         p.pdf,
		JobFetcher:  jobFetcher(settings, log),
		JWT:         jwtCfg,
		Passwords:   passwords,
		RateLimiter: limiter,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
