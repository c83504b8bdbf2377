package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/cv-architect/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the job page cannot be retrieved.
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text can be pulled from the page.
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions configures job description ingestion from a web page.
type URLOptions struct {
	// UseBrowser enables the headless Chrome fallback for script-rendered pages.
	UseBrowser     bool
	ChromePath     string
	BrowserTimeout time.Duration
	Fetch          *fetch.Options
	Logger         *slog.Logger
}

// JobDescriptionFromURL fetches a job posting and returns its cleaned text.
// Platform-specific selectors are applied first; when the page yields too
// little text and UseBrowser is set, the page is rendered in Chrome and
// extraction is repeated on the rendered HTML.
func JobDescriptionFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	platform := fetch.DetectPlatform(urlStr)
	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)
	logger.Debug("fetching job description", "url", urlStr, "platform", platform)

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	text, err := fetch.ExtractMainMarkdown(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	rendered := false
	if opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		logger.Info("job page text too short, rendering with browser",
			"url", urlStr,
			"chars", len(text),
		)
		html, browserErr := fetch.WithBrowser(ctx, urlStr, fetch.BrowserOptions{
			ExecPath: opts.ChromePath,
			Timeout:  opts.BrowserTimeout,
			Logger:   logger,
		})
		if browserErr != nil {
			logger.Warn("browser fallback failed, keeping fetched text", "error", browserErr)
		} else if renderedText, extractErr := fetch.ExtractMainMarkdown(html, contentSelectors, noiseSelectors...); extractErr == nil && len(renderedText) > len(text) {
			text = renderedText
			rendered = true
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%w: page has no readable text", ErrContentExtractionFailed)
	}

	meta := NewMetadata(cleaned, urlStr)
	meta.Rendered = rendered
	return cleaned, meta, nil
}
