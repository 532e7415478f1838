package render

import (
	"context"
	"fmt"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Rasterizer turns an HTML document into a PNG file on disk.
type Rasterizer interface {
	Rasterize(ctx context.Context, html, outputPath string) error
}

// RodRasterizer screenshots documents with a headless Chromium controlled
// through go-rod. Each call launches its own browser; concurrency is bounded
// by the pipeline's worker pool.
type RodRasterizer struct {
	// BrowserBin overrides the Chromium binary. Empty means rod's managed
	// download.
	BrowserBin string
}

func (r *RodRasterizer) Rasterize(ctx context.Context, html, outputPath string) error {
	l := launcher.New().Headless(true)
	if r.BrowserBin != "" {
		l = l.Bin(r.BrowserBin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("browser launch: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("browser connect: %w", err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("page open: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return fmt.Errorf("set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}

	data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}
