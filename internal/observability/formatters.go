// Package observability provides formatted terminal output for analyses,
// headshot feedback and history listings.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/cv-architect/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// barWidth is the width of a score bar
	barWidth = 20
)

// Printer handles formatted terminal output
type Printer struct {
	out io.Writer
	// Full disables list truncation.
	Full bool
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func (p *Printer) limit(n int) int {
	if p.Full {
		return n
	}
	return min(n, maxItemsToShow)
}

// writeList appends a bulleted list, eliding entries past the display limit.
func (p *Printer) writeList(sb *strings.Builder, heading, bullet string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := p.limit(len(items))
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  %s %s\n", bullet, items[i]))
	}
	if len(items) > count {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-count))
	}
	sb.WriteString("\n")
}

// ScoreBar renders a score as a fixed-width bar, e.g. "███████░░░  70".
func ScoreBar(score types.Score) string {
	v := max(0, min(int(score), 100))
	filled := v * barWidth / 100
	return fmt.Sprintf("%s%s %3d", strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled), v)
}

// PrintScores outputs the score breakdown of an analysis.
func (p *Printer) PrintScores(result *types.AnalysisResult) {
	if result == nil {
		return
	}
	s := result.Scores
	rows := []struct {
		label string
		score types.Score
	}{
		{"Overall", s.Overall},
		{"ATS", s.ATS},
		{"Keywords", s.Keyword},
		{"Skills", s.Skills},
		{"Experience", s.Experience},
		{"Format", s.Format},
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%-11s %s\n", row.label, ScoreBar(row.score)))
	}
	p.printBox("SCORES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs a human-readable summary of an analysis result.
func (p *Printer) PrintAnalysis(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	role := result.JobTitleDetected
	if role == "" {
		role = "(not detected)"
	}
	sb.WriteString(fmt.Sprintf("Role:     %s\n", role))
	sb.WriteString(fmt.Sprintf("Overall:  %d/100\n", result.Scores.Overall))
	if result.MarketFit != "" {
		sb.WriteString(fmt.Sprintf("Market:   %s\n", result.MarketFit))
	}
	sb.WriteString("\n")
	if result.Summary != "" {
		sb.WriteString(result.Summary + "\n\n")
	}
	p.writeList(&sb, "Strengths", "✓", result.Strengths)
	p.writeList(&sb, "Critical Gaps", "⚠", result.Weaknesses)
	p.printBox("CV ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))

	p.PrintScores(result)
	p.PrintKeywords(result.Keywords)
	p.PrintSections(result.SectionAnalysis)
	p.PrintSalary(result.SalaryEstimation)
}

// PrintKeywords outputs matched and missing keywords.
func (p *Printer) PrintKeywords(gap types.KeywordGap) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match score: %d%%\n\n", gap.Score))
	if len(gap.Missing) == 0 {
		sb.WriteString("No critical keywords missing.\n\n")
	} else {
		p.writeList(&sb, "Missing", "✗", gap.Missing)
	}
	p.writeList(&sb, "Matched", "✓", gap.Present)
	p.printBox("KEYWORD GAP", strings.TrimSuffix(sb.String(), "\n"))
}

var statusIcons = map[types.SectionStatus]string{
	types.StatusGood:     "✅",
	types.StatusWarning:  "⚠",
	types.StatusCritical: "❌",
	types.StatusMissing:  "∅",
}

// PrintSections outputs the per-section feedback.
func (p *Printer) PrintSections(sections []types.SectionFeedback) {
	if len(sections) == 0 {
		return
	}

	var sb strings.Builder
	for i, s := range sections {
		icon, ok := statusIcons[s.Status]
		if !ok {
			icon = "?"
		}
		sb.WriteString(fmt.Sprintf("%s %s [%s]\n", icon, s.Name, s.Status))
		if s.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  → %s\n", s.Suggestion))
		}
		if i < len(sections)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("SECTION ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSalary outputs the salary estimate if the model produced one.
func (p *Printer) PrintSalary(est types.SalaryEstimate) {
	if est.Min == "" && est.Max == "" {
		return
	}
	content := fmt.Sprintf("%s – %s %s", est.Min, est.Max, est.Currency)
	if est.Explanation != "" {
		content += "\n\n" + est.Explanation
	}
	p.printBox("SALARY ESTIMATE", content)
}

// PrintHeadshot outputs headshot feedback.
func (p *Printer) PrintHeadshot(h *types.HeadshotAnalysis) {
	if h == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:           %s\n\n", ScoreBar(h.Score)))
	sb.WriteString(fmt.Sprintf("Professionalism: %s\n", h.Professionalism))
	sb.WriteString(fmt.Sprintf("Lighting:        %s\n", h.Lighting))
	sb.WriteString(fmt.Sprintf("Background:      %s\n", h.Background))
	sb.WriteString(fmt.Sprintf("Attire:          %s\n", h.Attire))
	sb.WriteString(fmt.Sprintf("Expression:      %s\n\n", h.Expression))
	p.writeList(&sb, "Tips", "•", h.Tips)
	p.printBox("HEADSHOT FEEDBACK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHistory outputs history entries, newest first as stored.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHistory(items []types.HistoryItem, loc *time.Location) {
	if len(items) == 0 {
		border := strings.Repeat("─", boxWidth-2)
		fmt.Fprintf(p.out, "┌%s┐\n", border)
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "No saved analyses yet.")
		fmt.Fprintf(p.out, "└%s┘\n", border)
		return
	}
	if loc == nil {
		loc = time.Local
	}

	var sb strings.Builder
	for i, item := range items {
		created := time.UnixMilli(item.CreatedAt).In(loc).Format("2006-01-02 15:04")
		sb.WriteString(fmt.Sprintf("%3d  %s  %s\n", item.Score, created, truncate(item.Title, 30)))
		sb.WriteString(fmt.Sprintf("     %s\n", item.ID))
		if i < len(items)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox(fmt.Sprintf("HISTORY (%d)", len(items)), strings.TrimSuffix(sb.String(), "\n"))
}
