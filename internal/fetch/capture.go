// Package fetch - capture.go provides best-effort visual capture of audited
// pages through a headless browser.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultCaptureTimeout bounds a single screenshot attempt.
const DefaultCaptureTimeout = 45 * time.Second

// ScreenshotCapturer renders a page in headless Chrome and stores a full-page
// screenshot on disk. Requires Chrome/Chromium to be installed on the system.
type ScreenshotCapturer struct {
	Dir     string
	Timeout time.Duration
	Verbose bool
}

// Capture navigates to url, takes a full-page screenshot, and returns the
// path of the written PNG. Failures are returned to the caller, which treats
// the capture as optional.
func (c *ScreenshotCapturer) Capture(ctx context.Context, url string) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}

	if c.Verbose {
		log.Printf("[CAPTURE] Starting headless browser for: %s", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Give JavaScript-rendered pages a moment to settle
		chromedp.Sleep(2*time.Second),
		chromedp.FullScreenshot(&buf, 80),
	)
	if err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}

	dir := c.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create capture directory %s: %w", dir, err)
	}

	sum := sha256.Sum256([]byte(url))
	path := filepath.Join(dir, fmt.Sprintf("capture_%s.png", hex.EncodeToString(sum[:6])))
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return "", fmt.Errorf("failed to write capture file %s: %w", path, err)
	}

	if c.Verbose {
		log.Printf("[CAPTURE] Wrote %d bytes to %s", len(buf), path)
	}

	return path, nil
}
