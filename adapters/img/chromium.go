package exportimg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/goliatone/go-sheetsnap/export"
)

// ChromiumEngine renders image output using a shared headless Chromium
// instance.
type ChromiumEngine struct {
	BrowserPath string
	Headless    bool
	Timeout     time.Duration
	Args        []string

	initOnce      sync.Once
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// Render captures a full-page screenshot of the markup file and writes it to
// the requested image path.
func (e *ChromiumEngine) Render(ctx context.Context, req export.RenderRequest) error {
	if e == nil {
		return export.NewError(export.KindInternal, "chromium engine is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := e.ensureBrowser(); err != nil {
		return export.NewError(export.KindInternal, "chromium engine init failed", err)
	}

	abs, err := filepath.Abs(req.HTMLPath)
	if err != nil {
		return export.NewError(export.KindExport, "resolve markup path", err)
	}
	fileURL := "file://" + filepath.ToSlash(abs)

	tabCtx, cancel := chromedp.NewContext(e.browserCtx)
	defer cancel()

	execCtx, cancelReq := context.WithCancel(tabCtx)
	defer cancelReq()
	go func() {
		select {
		case <-ctx.Done():
			cancelReq()
		case <-execCtx.Done():
		}
	}()
	if e.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithTimeout(execCtx, e.Timeout)
		defer cancelTimeout()
	}

	params, err := buildScreenshotParams(req.Options)
	if err != nil {
		return err
	}

	var shot []byte
	actions := []chromedp.Action{}
	if req.Options.Zoom > 0 && req.Options.Zoom != 1 {
		zoom := req.Options.Zoom
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDeviceMetricsOverride(0, 0, zoom, false).Do(ctx)
		}))
	}
	actions = append(actions,
		chromedp.Navigate(fileURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			shot, err = params.Do(ctx)
			return err
		}),
	)

	if err := chromedp.Run(execCtx, actions...); err != nil {
		return export.NewError(export.KindExport, "chromium image render failed", err)
	}

	if err := os.WriteFile(req.ImagePath, shot, 0o644); err != nil {
		return export.NewError(export.KindExport, "write image file", err)
	}
	return nil
}

// Close releases Chromium resources if they have been initialized.
func (e *ChromiumEngine) Close() error {
	if e == nil {
		return nil
	}
	if e.browserCancel != nil {
		e.browserCancel()
	}
	if e.allocCancel != nil {
		e.allocCancel()
	}
	return nil
}

func (e *ChromiumEngine) ensureBrowser() error {
	e.initOnce.Do(func() {
		options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if e.BrowserPath != "" {
			options = append(options, chromedp.ExecPath(e.BrowserPath))
		}
		options = append(options, chromedp.Flag("headless", e.Headless))
		options = append(options, allocatorOptionsFromArgs(e.Args)...)

		e.allocCtx, e.allocCancel = chromedp.NewExecAllocator(context.Background(), options...)
		e.browserCtx, e.browserCancel = chromedp.NewContext(e.allocCtx)
	})
	if e.allocCtx == nil || e.browserCtx == nil {
		return errors.New("chromium allocator unavailable")
	}
	return nil
}

// buildScreenshotParams maps image options onto a CaptureScreenshot call.
// Quality only applies to lossy formats.
func buildScreenshotParams(opts export.ImageOptions) (*page.CaptureScreenshotParams, error) {
	if opts.Quality < 0 || opts.Quality > 100 {
		return nil, export.NewError(export.KindValidation, "image quality must be between 0 and 100", nil)
	}

	params := page.CaptureScreenshot().WithCaptureBeyondViewport(true)

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	switch format {
	case "", "png":
		params = params.WithFormat(page.CaptureScreenshotFormatPng)
	case "jpg", "jpeg":
		params = params.WithFormat(page.CaptureScreenshotFormatJpeg)
		if opts.Quality > 0 {
			params = params.WithQuality(int64(opts.Quality))
		}
	case "webp":
		params = params.WithFormat(page.CaptureScreenshotFormatWebp)
		if opts.Quality > 0 {
			params = params.WithQuality(int64(opts.Quality))
		}
	default:
		return nil, export.NewError(export.KindValidation, fmt.Sprintf("unsupported image format: %s", opts.Format), nil)
	}
	return params, nil
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		arg = strings.TrimPrefix(arg, "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			options = append(options, chromedp.Flag(name, value))
			continue
		}
		options = append(options, chromedp.Flag(arg, true))
	}
	return options
}
