// Package main provides the cv_architect command line and HTTP API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-architect/internal/config"
	"github.com/jonathan/cv-architect/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "cv_architect",
	Short: "AI CV analysis and career coaching",
	Long: `cv_architect scores a CV against a job description and target market with Google Gemini,
keeps the last analyses in a local history, and exports printable reports, cover letters and CV templates.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

var (
	configPath string
	verbose    bool

	// settings and log are set by loadSettings before any command runs.
	settings *config.Config
	log      *slog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json (environment variables override it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
}

func loadSettings(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}
	l := logger.New(cfg.LoggerConfig())
	l.SetDefault()

	settings = cfg
	log = l.Logger
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
