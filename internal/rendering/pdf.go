package rendering

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/cv-architect/internal/chrome"
	"github.com/jonathan/cv-architect/internal/types"
)

// PDFContentType is the content type of exported reports.
const PDFContentType = "application/pdf"

// PDFConverter prints HTML to PDF in headless Chrome.
type PDFConverter struct {
	chromePath string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewPDFConverter creates a converter. An empty chromePath lets chromedp find Chrome.
func NewPDFConverter(chromePath string, logger *slog.Logger) *PDFConverter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFConverter{chromePath: chromePath, timeout: chrome.DefaultTimeout, logger: logger}
}

// Convert renders html and prints it to an A4 PDF. A browser that cannot be
// started yields an error matching chrome.ErrUnavailable.
func (c *PDFConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	start := time.Now()

	browserCtx, cancel := chrome.NewContext(ctx, chrome.Options{ExecPath: c.chromePath, Timeout: c.timeout})
	defer cancel()

	var pdfBuf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		// Let remote stylesheets and fonts load.
		chromedp.Sleep(PrintDelay),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.4).
				WithMarginBottom(0.4).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, &RenderError{Message: "PDF generation failed", Cause: chrome.Unavailable(err)}
	}

	c.logger.Debug("PDF conversion completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"pdf_size_bytes", len(pdfBuf),
	)
	return pdfBuf, nil
}

// ReportPDF renders the report of item without the print script and converts it.
func (c *PDFConverter) ReportPDF(ctx context.Context, item types.HistoryItem) (Document, error) {
	html, err := ReportForItem(item, false)
	if err != nil {
		return Document{}, err
	}
	data, err := c.Convert(ctx, html)
	if err != nil {
		return Document{}, err
	}
	return Document{Filename: ReportFilename(item.Title, "pdf"), ContentType: PDFContentType, Body: data}, nil
}

// ReportFilename builds the download name for a report of the given title.
func ReportFilename(title, ext string) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(title, "_"), "_")
	if name == "" {
		name = "Candidate"
	}
	return fmt.Sprintf("CV_Analysis_Report_%s.%s", name, ext)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9]+`)
