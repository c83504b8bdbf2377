package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/cv-architect/internal/chrome"
)

// MinContentLength is the minimum extracted text length to consider HTTP fetch successful.
// If content is shorter, we fall back to browser rendering.
const MinContentLength = 500

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is likely a JavaScript-rendered SPA.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// BrowserOptions configures headless rendering.
type BrowserOptions struct {
	ExecPath string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// WithBrowser renders a page in a headless browser and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, opts BrowserOptions) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger.Debug("rendering page in headless browser", "url", url)
	start := time.Now()

	browserCtx, cancel := chrome.NewContext(ctx, chrome.Options{ExecPath: opts.ExecPath, Timeout: timeout})
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Cookie banners; absence is fine.
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	logger.Debug("browser rendering completed",
		"url", url,
		"duration_ms", time.Since(start).Milliseconds(),
		"html_bytes", len(html),
	)
	return html, nil
}
