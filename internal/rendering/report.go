package rendering

import (
	"bytes"
	"embed"
	"html/template"
	"sync"
	"time"

	"github.com/jonathan/cv-architect/internal/types"
)

// PrintDelay is how long the report waits for assets before opening the print dialog.
const PrintDelay = 800 * time.Millisecond

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	reportOnce sync.Once
	reportTmpl *template.Template
	reportErr  error
)

// ReportOptions controls report rendering.
type ReportOptions struct {
	// GeneratedAt is shown as the analysis date; defaults to now.
	GeneratedAt time.Time
	// AutoPrint adds the delayed print() call. PDF export turns it off.
	AutoPrint bool
	Location  *time.Location
}

type scoreCard struct {
	Label string
	Color string
	Value types.Score
}

type reportData struct {
	Result       *types.AnalysisResult
	Date         string
	Timestamp    string
	ScoreCards   []scoreCard
	AutoPrint    bool
	PrintDelayMS int64
}

func statusClass(status types.SectionStatus) string {
	switch status {
	case types.StatusGood:
		return "bg-green-100 text-green-700 border-green-200"
	case types.StatusWarning:
		return "bg-amber-100 text-amber-700 border-amber-200"
	default:
		return "bg-red-100 text-red-700 border-red-200"
	}
}

func loadReportTemplate() (*template.Template, error) {
	reportOnce.Do(func() {
		reportTmpl, reportErr = template.New("report.html.tmpl").
			Funcs(template.FuncMap{
				"statusClass": statusClass,
				"inc":         func(i int) int { return i + 1 },
			}).
			ParseFS(templateFS, "templates/report.html.tmpl")
		if reportErr != nil {
			reportErr = &TemplateError{Name: "report", Message: "failed to parse template", Cause: reportErr}
		}
	})
	return reportTmpl, reportErr
}

// RenderReport renders a self-contained printable HTML report. It performs no
// network calls; every model-provided string is HTML-escaped.
func RenderReport(result *types.AnalysisResult, opts ReportOptions) (string, error) {
	if result == nil {
		return "", &RenderError{Message: "no analysis to render"}
	}
	tmpl, err := loadReportTemplate()
	if err != nil {
		return "", err
	}

	generated := opts.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	if opts.Location != nil {
		generated = generated.In(opts.Location)
	}

	s := result.Scores
	data := reportData{
		Result:    result,
		Date:      generated.Format("2 Jan 2006"),
		Timestamp: generated.Format("2 Jan 2006 15:04:05"),
		ScoreCards: []scoreCard{
			{"ATS Score", "blue", s.ATS},
			{"Keywords", "purple", s.Keyword},
			{"Skills", "pink", s.Skills},
			{"Experience", "amber", s.Experience},
			{"Format", "indigo", s.Format},
		},
		AutoPrint:    opts.AutoPrint,
		PrintDelayMS: PrintDelay.Milliseconds(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", &TemplateError{Name: "report", Message: "failed to execute template", Cause: err}
	}
	return buf.String(), nil
}

// ReportForItem renders the report of a history item dated at its creation time.
func ReportForItem(item types.HistoryItem, autoPrint bool) (string, error) {
	return RenderReport(&item.Result, ReportOptions{
		GeneratedAt: time.UnixMilli(item.CreatedAt),
		AutoPrint:   autoPrint,
	})
}
