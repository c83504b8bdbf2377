package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-architect/internal/analysis"
	"github.com/jonathan/cv-architect/internal/app"
	"github.com/jonathan/cv-architect/internal/ingestion"
	"github.com/jonathan/cv-architect/internal/observability"
	"github.com/jonathan/cv-architect/internal/rendering"
	"github.com/jonathan/cv-architect/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a CV against a job description and target market",
	Long: `Sends the CV (a PDF, Word document or image file, or plain text) with an optional job description to
Gemini in a single request, prints the analysis and saves it to history.

The job description can be given inline, read from a file, or fetched from a job board URL.
With --headshot a profile photo is analyzed at the same time.`,
	RunE: runAnalyze,
}

var (
	analyzeFile       string
	analyzeText       string
	analyzeTextFile   string
	analyzeJD         string
	analyzeJDFile     string
	analyzeJobURL     string
	analyzeMarket     string
	analyzeHeadshot   string
	analyzeJSON       bool
	analyzeFull       bool
	analyzeReportPath string
	analyzePDFPath    string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "CV file (PDF, DOCX, JPEG, PNG, WEBP)")
	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "CV text")
	analyzeCmd.Flags().StringVar(&analyzeTextFile, "text-file", "", "Plain text file containing the CV")
	analyzeCmd.Flags().StringVar(&analyzeJD, "jd", "", "Job description text")
	analyzeCmd.Flags().StringVar(&analyzeJDFile, "jd-file", "", "Job description text file")
	analyzeCmd.Flags().StringVar(&analyzeJobURL, "job-url", "", "URL to fetch the job description from")
	analyzeCmd.Flags().StringVarP(&analyzeMarket, "market", "m", "", "Target market: "+marketList())
	analyzeCmd.Flags().StringVar(&analyzeHeadshot, "headshot", "", "Profile photo to analyze alongside the CV")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the history item as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeFull, "full", false, "Do not truncate long lists")
	analyzeCmd.Flags().StringVar(&analyzeReportPath, "report", "", "Write the printable HTML report to this path")
	analyzeCmd.Flags().StringVar(&analyzePDFPath, "pdf", "", "Write the PDF report to this path (requires Chrome)")

	analyzeCmd.MarkFlagsMutuallyExclusive("file", "text", "text-file")
	analyzeCmd.MarkFlagsOneRequired("file", "text", "text-file")
	analyzeCmd.MarkFlagsMutuallyExclusive("jd", "jd-file", "job-url")

	rootCmd.AddCommand(analyzeCmd)
}

func marketList() string {
	names := make([]string, 0, len(types.Markets()))
	for _, m := range types.Markets() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

// cvFormInput reads the CV from exactly one of file, text or textFile.
func cvFormInput(file, text, textFile string) (app.FormInput, error) {
	set := 0
	for _, v := range []string{file, text, textFile} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return app.FormInput{}, fmt.Errorf("exactly one of --file, --text or --text-file must be provided")
	}

	switch {
	case file != "":
		f, err := ingestion.ReadFile(file)
		if err != nil {
			return app.FormInput{}, err
		}
		return app.FormInput{File: f}, nil
	case textFile != "":
		data, err := os.ReadFile(textFile)
		if err != nil {
			return app.FormInput{}, fmt.Errorf("failed to read CV text: %w", err)
		}
		return app.FormInput{CVText: string(data)}, nil
	default:
		return app.FormInput{CVText: text}, nil
	}
}

// jobDescriptionInput resolves the optional job description from at most one source.
func jobDescriptionInput(ctx context.Context, jd, jdFile, jobURL string, fetch func(context.Context, string) (string, error)) (string, error) {
	switch {
	case jdFile != "":
		text, _, err := ingestion.JobDescriptionFromFile(jdFile)
		if err != nil {
			return "", fmt.Errorf("failed to read job description: %w", err)
		}
		return text, nil
	case jobURL != "":
		text, err := fetch(ctx, jobURL)
		if err != nil {
			return "", fmt.Errorf("failed to fetch job description: %w", err)
		}
		return text, nil
	default:
		return jd, nil
	}
}

// analyzeOutput is the --json output.
type analyzeOutput struct {
	Item          *types.HistoryItem      `json:"item"`
	Headshot      *types.HeadshotAnalysis `json:"headshot,omitempty"`
	HeadshotError *analysis.Failure       `json:"headshotError,omitempty"`
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	in, err := cvFormInput(analyzeFile, analyzeText, analyzeTextFile)
	if err != nil {
		return err
	}
	in.Market = analyzeMarket
	if in.Market == "" {
		in.Market = string(settings.DefaultMarket())
	}
	in.JobDescription, err = jobDescriptionInput(ctx, analyzeJD, analyzeJDFile, analyzeJobURL, jobFetcher(settings, log))
	if err != nil {
		return err
	}

	var photo *ingestion.File
	if analyzeHeadshot != "" {
		photo, err = ingestion.ReadFile(analyzeHeadshot)
		if err != nil {
			return err
		}
	}

	p, err := newPipeline(ctx, settings, log)
	if err != nil {
		return err
	}
	defer p.Close()

	out := analyzeOutput{}
	var g errgroup.Group
	g.Go(func() error {
		item, err := p.controller.SubmitForm(ctx, in)
		out.Item = item
		return err
	})
	if photo != nil {
		g.Go(func() error {
			// A photo failure never fails the CV analysis.
			result, err := p.controller.AnalyzeHeadshot(ctx, photo.Data, ingestion.ResolveType(photo))
			if err != nil {
				out.HeadshotError = analysis.Classify(err)
				return nil
			}
			out.Headshot = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	if analyzeJSON {
		if err := writeJSON(stdout, out); err != nil {
			return err
		}
	} else {
		printer := observability.NewPrinter(stdout)
		printer.Full = analyzeFull
		printer.PrintAnalysis(&out.Item.Result)
		if out.Headshot != nil {
			printer.PrintHeadshot(out.Headshot)
		}
		if out.HeadshotError != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Headshot: %s\n", out.HeadshotError.Message)
		}
		_, _ = fmt.Fprintf(stdout, "Saved to history as %s\n", out.Item.ID)
	}

	if analyzeReportPath != "" {
		if err := writeReportHTML(analyzeReportPath, *out.Item); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Report: %s\n", analyzeReportPath)
	}
	if analyzePDFPath != "" {
		doc, err := p.pdf.ReportPDF(ctx, *out.Item)
		if err != nil {
			return analysis.Classify(err)
		}
		if err := os.WriteFile(analyzePDFPath, doc.Body, 0o644); err != nil {
			return fmt.Errorf("failed to write PDF: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "PDF: %s\n", analyzePDFPath)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func writeReportHTML(path string, item types.HistoryItem) error {
	html, err := rendering.ReportForItem(item, true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
