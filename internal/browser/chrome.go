// Package browser drives headless Chrome to capture and print rendered
// documents.
package browser

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/paper"
	"github.com/jonathan/cv-builder/internal/templates"
)

// DefaultTimeout bounds a single capture or print.
const DefaultTimeout = 60 * time.Second

// Config configures the Chrome instance.
type Config struct {
	// ExecPath overrides the Chrome binary. Empty falls back to CHROME_PATH
	// and then to chromedp's lookup.
	ExecPath string
	Timeout  time.Duration
}

// Chrome captures visual trees with headless Chrome. It satisfies both
// export.Snapshotter and export.Printer.
type Chrome struct {
	execPath string
	timeout  time.Duration
	spool    Spool
	logger   logging.Logger
}

// New creates a Chrome adapter. Printed documents are handed to spool; a nil
// spool discards them.
func New(cfg Config, spool Spool, logger logging.Logger) *Chrome {
	if cfg.ExecPath == "" {
		cfg.ExecPath = os.Getenv("CHROME_PATH")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Chrome{execPath: cfg.ExecPath, timeout: cfg.Timeout, spool: spool, logger: logger}
}

// allocate starts a browser context with the headless flags used everywhere
// in the service
func (c *Chrome) allocate(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if c.execPath != "" {
		opts = append(opts, chromedp.ExecPath(c.execPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, c.timeout)
	return timeoutCtx, func() {
		cancelTimeout()
		cancelBrowser()
		cancelAlloc()
	}
}

// writeDocument stores html in a fresh temp dir and returns its file URL.
func writeDocument(html string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "cv-builder-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, []byte(html), 0o600); err != nil {
		cleanup()
		return "", nil, err
	}
	return "file://" + path, cleanup, nil
}

// waitForFonts resolves once every web font used by the document is loaded,
// so the capture matches the live preview.
func waitForFonts() chromedp.Action {
	var ready bool
	return chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &ready,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		})
}

// Capture renders the tree and screenshots its capture root at scale.
func (c *Chrome) Capture(ctx context.Context, tree *templates.VisualTree, scale float64) (*export.Raster, error) {
	if tree == nil {
		return nil, export.ErrCaptureTargetMissing
	}
	if scale <= 0 {
		scale = 1
	}
	docURL, cleanup, err := writeDocument(tree.HTML)
	if err != nil {
		return nil, &export.RasterizationError{Message: "failed to stage document", Cause: err}
	}
	defer cleanup()

	cctx, cancel := c.allocate(ctx)
	defer cancel()

	start := time.Now()
	var found bool
	var shot []byte
	err = chromedp.Run(cctx,
		chromedp.EmulateViewport(int64(tree.WidthPx), int64(paper.PixelHeight(tree.Format, paper.Portrait))),
		chromedp.Navigate(docURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(`document.querySelector(%q) !== null`, templates.RootSelector), &found),
	)
	if err != nil {
		return nil, &export.RasterizationError{Message: "failed to load document", Cause: err}
	}
	if !found {
		return nil, &export.RasterizationError{Message: "document has no capture root", Cause: export.ErrCaptureTargetMissing}
	}
	err = chromedp.Run(cctx,
		waitForFonts(),
		chromedp.ScreenshotScale(templates.RootSelector, scale, &shot, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &export.RasterizationError{Message: "failed to screenshot " + tree.RootID, Cause: err}
	}

	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, &export.RasterizationError{Message: "failed to decode screenshot", Cause: err}
	}
	c.logger.Debug(ctx, "chrome capture complete",
		"root", tree.RootID, "bytes", len(shot), "duration_ms", time.Since(start).Milliseconds())
	return &export.Raster{Image: img, Scale: scale}, nil
}

// RenderPDF sends a standalone document through Chrome's print pipeline and
// returns the printed PDF.
func (c *Chrome) RenderPDF(ctx context.Context, doc string, opts export.PrintOptions) ([]byte, error) {
	docURL, cleanup, err := writeDocument(doc)
	if err != nil {
		return nil, &export.PrintError{Message: "failed to stage document", Cause: err}
	}
	defer cleanup()

	cctx, cancel := c.allocate(ctx)
	defer cancel()

	w, h := paper.Dimensions(opts.Format, opts.Orientation).Inches()
	var pdf []byte
	err = chromedp.Run(cctx,
		chromedp.Navigate(docURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		waitForFonts(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(w).
				WithPaperHeight(h).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &export.PrintError{Message: "chrome print failed", Cause: err}
	}
	return pdf, nil
}

// Print renders the document and hands the result to the spool.
func (c *Chrome) Print(ctx context.Context, doc string, opts export.PrintOptions) error {
	pdf, err := c.RenderPDF(ctx, doc, opts)
	if err != nil {
		return err
	}
	if c.spool == nil {
		c.logger.Warn(ctx, "print spool not configured, discarding document", "bytes", len(pdf))
		return nil
	}
	name := export.Filename(opts.Title, "cv", "pdf")
	if err := c.spool.Spool(ctx, name, pdf); err != nil {
		return &export.PrintError{Message: "failed to spool " + name, Cause: err}
	}
	return nil
}
