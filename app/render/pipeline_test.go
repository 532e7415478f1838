package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verzendhq/verzendbot/app/artifacts"
	"github.com/verzendhq/verzendbot/app/carriers"
)

// writingRaster writes a tiny file so the artifact check passes.
type writingRaster struct {
	mu    sync.Mutex
	calls int
}

func (r *writingRaster) Rasterize(ctx context.Context, html, outputPath string) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return os.WriteFile(outputPath, []byte("png"), 0o644)
}

// silentRaster returns nil but never produces the file.
type silentRaster struct{}

func (silentRaster) Rasterize(context.Context, string, string) error { return nil }

// stuckRaster blocks until the context expires.
type stuckRaster struct{}

func (stuckRaster) Rasterize(ctx context.Context, _, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

type recordingLedger struct {
	mu       sync.Mutex
	recorded []artifacts.Artifact
}

func (l *recordingLedger) Record(_ context.Context, a artifacts.Artifact) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recorded = append(l.recorded, a)
	return nil
}

func newTestPipeline(t *testing.T, raster Rasterizer, ledger artifacts.Ledger) (*Pipeline, string) {
	t.Helper()
	outDir := filepath.Join(t.TempDir(), "verzendbewijzen")
	reg := carriers.NewRegistry(t.TempDir())
	p, err := NewPipeline(Options{
		Carriers:  reg,
		Raster:    raster,
		Ledger:    ledger,
		OutputDir: outDir,
		Workers:   2,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	return p, outDir
}

func postnlCarrier(t *testing.T) carriers.Carrier {
	t.Helper()
	c, ok := carriers.NewRegistry("").Get("postnl")
	require.True(t, ok)
	return c
}

func TestPipelineGenerate(t *testing.T) {
	answers := map[string]string{
		"bedrijf":  "Amazon",
		"straat":   "Herengracht 1",
		"postcode": "1022VX",
		"stad":     "Amsterdam",
		"land":     "Nederland",
		"track":    "PNL23834HSDHH",
	}

	t.Run("produces a timestamped artifact", func(t *testing.T) {
		ledger := &recordingLedger{}
		p, outDir := newTestPipeline(t, &writingRaster{}, ledger)

		path, err := p.Generate(context.Background(), 42, postnlCarrier(t), answers)
		require.NoError(t, err)

		assert.Equal(t, outDir, filepath.Dir(path))
		assert.Regexp(t, regexp.MustCompile(`^postnl_Amazon_\d{8}_\d{6}\.png$`), filepath.Base(path))
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr)

		require.Len(t, ledger.recorded, 1)
		assert.Equal(t, int64(42), ledger.recorded[0].UserID)
		assert.Equal(t, "postnl", ledger.recorded[0].Carrier)
		assert.Equal(t, "Amazon", ledger.recorded[0].NameSegment)
	})

	t.Run("missing output file surfaces as artifact_missing", func(t *testing.T) {
		p, _ := newTestPipeline(t, silentRaster{}, nil)

		_, err := p.Generate(context.Background(), 42, postnlCarrier(t), answers)
		require.Error(t, err)

		var f *Failure
		require.True(t, errors.As(err, &f))
		assert.Equal(t, KindArtifactMissing, f.Kind)
		assert.Equal(t, KindArtifactMissing, f.Code())
	})

	t.Run("stuck rasterizer surfaces as timeout", func(t *testing.T) {
		outDir := filepath.Join(t.TempDir(), "out")
		p, err := NewPipeline(Options{
			Carriers:  carriers.NewRegistry(t.TempDir()),
			Raster:    stuckRaster{},
			OutputDir: outDir,
			Workers:   1,
			Timeout:   20 * time.Millisecond,
		})
		require.NoError(t, err)

		_, err = p.Generate(context.Background(), 42, postnlCarrier(t), answers)
		require.Error(t, err)

		var f *Failure
		require.True(t, errors.As(err, &f))
		assert.Equal(t, KindTimeout, f.Kind)
	})
}

func TestNameSegment(t *testing.T) {
	t.Run("prefers the name answer", func(t *testing.T) {
		assert.Equal(t, "Jan_Jansen", NameSegment(map[string]string{"naam": "Jan Jansen", "bedrijf": "Amazon"}))
	})
	t.Run("falls back to company", func(t *testing.T) {
		assert.Equal(t, "Coolblue_BV", NameSegment(map[string]string{"bedrijf": "Coolblue  BV"}))
	})
	t.Run("placeholder when both absent", func(t *testing.T) {
		assert.Equal(t, "onbekend", NameSegment(map[string]string{}))
	})
	t.Run("whitespace only counts as absent", func(t *testing.T) {
		assert.Equal(t, "onbekend", NameSegment(map[string]string{"naam": "   "}))
	})
}
