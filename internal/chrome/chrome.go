// Package chrome starts headless Chrome sessions shared by job page rendering
// and PDF report export.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds a single browser session.
const DefaultTimeout = 60 * time.Second

// ErrUnavailable is returned when no Chrome binary can be launched.
var ErrUnavailable = errors.New("headless browser unavailable")

// Options configures a browser session.
type Options struct {
	// ExecPath overrides the Chrome binary (CHROME_PATH).
	ExecPath string
	Timeout  time.Duration
}

// NewContext returns a chromedp context backed by a fresh headless browser.
// The returned cancel func releases the browser and must always be called.
func NewContext(ctx context.Context, opts Options) (context.Context, context.CancelFunc) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)

	return timeoutCtx, func() {
		cancelTimeout()
		cancelBrowser()
		cancelAlloc()
	}
}

// Launchable reports whether a Chrome binary can be found for opts.
// It does not start the browser.
func Launchable(opts Options) bool {
	if opts.ExecPath != "" {
		_, err := exec.LookPath(opts.ExecPath)
		return err == nil
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

// Unavailable wraps a launch failure so callers can match ErrUnavailable.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
