package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-architect/internal/analysis"
	"github.com/jonathan/cv-architect/internal/history"
	"github.com/jonathan/cv-architect/internal/rendering"
)

var reportCmd = &cobra.Command{
	Use:   "report ID",
	Short: "Export the printable report of a saved analysis",
	Long: `Writes the printable HTML report of a saved analysis. With --pdf the report is rendered to PDF
in headless Chrome. With --open the file is handed to the system viewer.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var templateCmd = &cobra.Command{
	Use:       "template KIND",
	Short:     "Download a Word-compatible CV template (ats, executive, fresher)",
	Args:      cobra.ExactArgs(1),
	ValidArgs: templateKinds(),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := rendering.CVTemplate(args[0])
		if err != nil {
			return err
		}
		return saveDocument(cmd.OutOrStdout(), templateOutDir, doc)
	},
}

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter ID",
	Short: "Export the generated cover letter of a saved analysis as a Word document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *history.Store) error {
			return exportCoverLetter(cmd.Context(), store, cmd.OutOrStdout(), args[0], coverLetterOutDir)
		})
	},
}

var (
	reportOut         string
	reportPDF         bool
	reportOpen        bool
	templateOutDir    string
	coverLetterOutDir string
)

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Output file (defaults to the report name in the current directory)")
	reportCmd.Flags().BoolVar(&reportPDF, "pdf", false, "Render to PDF (requires Chrome)")
	reportCmd.Flags().BoolVar(&reportOpen, "open", false, "Open the exported file in the system viewer")

	templateCmd.Flags().StringVarP(&templateOutDir, "out", "o", ".", "Output directory")
	coverLetterCmd.Flags().StringVarP(&coverLetterOutDir, "out", "o", ".", "Output directory")

	rootCmd.AddCommand(reportCmd, templateCmd, coverLetterCmd)
}

func templateKinds() []string {
	kinds := rendering.TemplateKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withStore(ctx, func(store *history.Store) error {
		item, err := store.Get(ctx, args[0])
		if err != nil {
			return err
		}

		var doc rendering.Document
		if reportPDF {
			doc, err = rendering.NewPDFConverter(settings.ChromePath, log).ReportPDF(ctx, item)
			if err != nil {
				return analysis.Classify(err)
			}
		} else {
			html, err := rendering.ReportForItem(item, true)
			if err != nil {
				return err
			}
			doc = rendering.Document{
				Filename:    rendering.ReportFilename(item.Title, "html"),
				ContentType: "text/html; charset=utf-8",
				Body:        []byte(html),
			}
		}

		path := reportOut
		if path == "" {
			path = doc.Filename
		}
		if err := writeFile(path, doc.Body); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

		if reportOpen {
			return rendering.OpenInViewer(path)
		}
		return nil
	})
}

func exportCoverLetter(ctx context.Context, store *history.Store, out io.Writer, id, dir string) error {
	item, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(item.Result.CoverLetter) == "" {
		return fmt.Errorf("analysis %s has no cover letter", id)
	}
	return saveDocument(out, dir, rendering.CoverLetter(item.Result.CoverLetter))
}

// saveDocument writes doc under dir with its own filename.
func saveDocument(out io.Writer, dir string, doc rendering.Document) error {
	path := filepath.Join(dir, doc.Filename)
	if err := writeFile(path, doc.Body); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Wrote %s\n", path)
	return err
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
