// Package render turns a finished set of answers into a PNG receipt via the
// carrier template and a headless browser screenshot.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/verzendhq/verzendbot/app/artifacts"
	"github.com/verzendhq/verzendbot/app/carriers"
	"github.com/verzendhq/verzendbot/core/logger"
)

// Options configure the pipeline.
type Options struct {
	Carriers  *carriers.Registry
	Raster    Rasterizer
	Ledger    artifacts.Ledger
	OutputDir string
	Workers   int
	Timeout   time.Duration
}

// Pipeline renders receipts with bounded raster concurrency.
type Pipeline struct {
	carriers  *carriers.Registry
	raster    Rasterizer
	ledger    artifacts.Ledger
	outputDir string
	timeout   time.Duration
	pool      *pool
}

// NewPipeline validates options and builds a pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Carriers == nil {
		return nil, errors.New("render: carriers registry is required")
	}
	if opts.Raster == nil {
		return nil, errors.New("render: rasterizer is required")
	}
	ledger := opts.Ledger
	if ledger == nil {
		ledger = artifacts.NoopLedger{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "verzendbewijzen"
	}
	return &Pipeline{
		carriers:  opts.Carriers,
		raster:    opts.Raster,
		ledger:    ledger,
		outputDir: outputDir,
		timeout:   timeout,
		pool:      newPool(opts.Workers),
	}, nil
}

// Generate renders the carrier template with the answers and screenshots it
// into the output directory. The returned path points at the PNG artifact.
func (p *Pipeline) Generate(ctx context.Context, userID int64, carrier carriers.Carrier, answers map[string]string) (string, error) {
	start := time.Now()

	tpl, err := p.carriers.Template(carrier.Name)
	if err != nil {
		return "", p.fail(ctx, carrier, start, failure(KindTemplateError, err))
	}
	html, err := tpl.Render(templateData(carrier, answers))
	if err != nil {
		return "", p.fail(ctx, carrier, start, failure(KindTemplateError, err))
	}

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", p.fail(ctx, carrier, start, failure(KindArtifactMissing, err))
	}

	seg := NameSegment(answers)
	filename := fmt.Sprintf("%s_%s_%s.png", carrier.Name, seg, time.Now().Format("20060102_150405"))
	path := filepath.Join(p.outputDir, filename)

	if err := p.pool.Acquire(ctx); err != nil {
		return "", p.fail(ctx, carrier, start, failure(KindTimeout, err))
	}
	defer p.pool.Release()

	rasterCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.raster.Rasterize(rasterCtx, html, path); err != nil {
		kind := KindRasterError
		if errors.Is(err, context.DeadlineExceeded) || rasterCtx.Err() != nil {
			kind = KindTimeout
		}
		return "", p.fail(ctx, carrier, start, failure(kind, err))
	}

	if _, err := os.Stat(path); err != nil {
		return "", p.fail(ctx, carrier, start, failure(KindArtifactMissing, err))
	}

	p.record(ctx, userID, carrier.Name, seg, path)

	logger.Info(ctx, "service.render", "render.done",
		slog.String("carrier", carrier.Name),
		slog.String("name_segment", seg),
		slog.String("artifact", filename),
		slog.Bool("template", !tpl.Fallback()),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return path, nil
}

func (p *Pipeline) fail(ctx context.Context, carrier carriers.Carrier, start time.Time, f *Failure) error {
	logger.Warn(ctx, "service.render", "render.failed",
		slog.String("carrier", carrier.Name),
		slog.String("err_code", f.Kind),
		slog.String("err", logger.SanitizeLimit(f.Error(), 256)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return f
}

func (p *Pipeline) record(ctx context.Context, userID int64, carrier, seg, path string) {
	err := p.ledger.Record(ctx, artifacts.Artifact{
		UserID:      userID,
		Carrier:     carrier,
		NameSegment: seg,
		Path:        path,
	})
	if err != nil {
		logger.Warn(ctx, "service.artifacts", "artifact.record_failed",
			slog.String("carrier", carrier),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}

// NameSegment derives the artifact filename segment from the answers:
// the recipient name when present, otherwise the company, otherwise a
// placeholder. Whitespace becomes underscores.
func NameSegment(answers map[string]string) string {
	seg := answers["naam"]
	if strings.TrimSpace(seg) == "" {
		seg = answers["bedrijf"]
	}
	if strings.TrimSpace(seg) == "" {
		seg = "onbekend"
	}
	return strings.Join(strings.Fields(seg), "_")
}

// templateData builds the variable set passed to carrier templates: every
// answer under its field name, the carrier under "vervoerder", and an ordered
// "fields" list for the generic fallback template.
func templateData(carrier carriers.Carrier, answers map[string]string) map[string]any {
	data := make(map[string]any, len(answers)+2)
	for k, v := range answers {
		data[k] = v
	}
	data["vervoerder"] = carrier.Name

	fields := make([]map[string]string, 0, len(carrier.Questions))
	for _, q := range carrier.Questions {
		if v, ok := answers[q.Field]; ok {
			fields = append(fields, map[string]string{"key": q.Field, "value": v})
		}
	}
	data["fields"] = fields
	return data
}
