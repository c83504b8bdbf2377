package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-architect/internal/headshot"
	"github.com/jonathan/cv-architect/internal/ingestion"
	"github.com/jonathan/cv-architect/internal/observability"
)

var headshotCmd = &cobra.Command{
	Use:   "headshot",
	Short: "Get feedback on a profile photo",
	Long:  "Analyzes a JPEG, PNG or WEBP profile photo for professionalism, lighting, background, attire and expression. Results are not saved to history.",
	RunE:  runHeadshot,
}

var (
	headshotPhoto string
	headshotJSON  bool
)

func init() {
	headshotCmd.Flags().StringVarP(&headshotPhoto, "photo", "p", "", "Photo file (required)")
	headshotCmd.Flags().BoolVar(&headshotJSON, "json", false, "Print the result as JSON")
	_ = headshotCmd.MarkFlagRequired("photo")

	rootCmd.AddCommand(headshotCmd)
}

func runHeadshot(cmd *cobra.Command, _ []string) error {
	photo, err := ingestion.ReadFile(headshotPhoto)
	if err != nil {
		return err
	}

	analyzer, err := headshot.NewAnalyzer(settings.APIKey, modelFactory(settings), log)
	if err != nil {
		return err
	}
	result, err := analyzer.Analyze(cmd.Context(), photo.Data, ingestion.ResolveType(photo))
	if err != nil {
		return err
	}

	if headshotJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintHeadshot(result)
	return nil
}
