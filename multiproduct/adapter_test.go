package multiproduct

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"math"
	"testing"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"logoprev/catalog"
	"logoprev/common"
	"logoprev/config"
	"logoprev/crop"
	"logoprev/render"
)

func testConfig() *config.EngineConfig {
	return &config.EngineConfig{
		Crop:         config.CropConfig{MinSize: 100, MinZoom: 1, MaxZoom: 3},
		Preview:      config.PreviewConfig{SurfaceSize: 100, Format: common.PreviewFormatPng, JPEGQuality: 90, RenderBudget: time.Second},
		MultiProduct: config.MultiProductConfig{AspectTolerance: 0.30, Concurrency: 2},
		Download:     config.DownloadConfig{Size: 200, FontSize: 12},
	}
}

func newAdapter(t *testing.T) *Adapter {
	t.Helper()
	cfg := testConfig()
	log := zaptest.NewLogger(t)
	r, err := render.NewRenderer(&cfg.Preview, &cfg.Download, log)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return NewAdapter(cfg, r, log)
}

func photo(t *testing.T) render.Source {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 300, 300))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return render.FromBytes(buf.Bytes())
}

// product with print area of given aspect ratio, height fixed at 100
func product(id string, aspect float64) *catalog.ProductDetail {
	return &catalog.ProductDetail{
		ID:           id,
		Name:         id,
		Customizable: true,
		PrintArea: &catalog.PrintArea{
			OffsetX: 10, OffsetY: 10,
			PixelWidth: 100 * aspect, PixelHeight: 100,
			PhysicalWidthCm: 20 * aspect, PhysicalHeightCm: 20,
		},
	}
}

func source(aspect float64) Source {
	logo := image.NewNRGBA(image.Rect(0, 0, 1000, 1000))
	for i := range logo.Pix {
		logo.Pix[i] = 255
	}
	fs := 1000.0
	w, h := fs, fs
	if aspect < 1 {
		w = fs * aspect
	} else {
		h = fs / aspect
	}
	return Source{
		Logo:   logo,
		Region: crop.Region{OffsetX: (fs - w) / 2, OffsetY: (fs - h) / 2, Width: w, Height: h, ZoomFactor: 1, AspectRatio: aspect},
	}
}

func TestApply_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		source       float64
		target       float64
		auto         bool
		wantDiffNear float64
	}{
		{"close aspect", 0.8, 1.0, true, 0.25},
		{"far aspect", 0.8, 1.5, false, 0.875},
		{"exact tolerance", 1.0, 1.3, true, 0.3},
		{"just over tolerance", 1.0, 1.3001, false, 0.3001},
		{"narrower within tolerance", 1.0, 0.7, true, 0.3},
	}

	a := newAdapter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := a.Apply(context.Background(), source(tt.source), []Target{{Product: product("p", tt.target), Photo: photo(t)}})
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if len(out) != 1 {
				t.Fatalf("Apply() returned %d outcomes", len(out))
			}
			switch o := out[0].(type) {
			case AutoApplied:
				if !tt.auto {
					t.Fatalf("outcome = auto applied, want manual crop")
				}
				if o.Composite == nil || len(o.Composite.DataURI) == 0 || len(o.Cropped) == 0 {
					t.Error("auto applied outcome without composite")
				}
				if math.Abs(o.Region.AspectRatio-tt.target) > 1e-12 {
					t.Errorf("transplanted aspect = %v, want %v", o.Region.AspectRatio, tt.target)
				}
				app := ApplicationOf(o)
				if !app.IsApplied || app.NeedsManualCrop || app.Composite == nil {
					t.Errorf("ApplicationOf() = %+v", app)
				}
			case NeedsManualCrop:
				if tt.auto {
					t.Fatalf("outcome = manual crop, want auto applied")
				}
				if math.Abs(o.AspectDiff-tt.wantDiffNear) > 1e-9 {
					t.Errorf("AspectDiff = %v, want %v", o.AspectDiff, tt.wantDiffNear)
				}
				app := ApplicationOf(o)
				if app.IsApplied || !app.NeedsManualCrop || app.Composite != nil || app.CropRegion != nil {
					t.Errorf("ApplicationOf() = %+v", app)
				}
			default:
				t.Fatalf("unexpected outcome %T", o)
			}
		})
	}
}

func TestApply_ManyTargets(t *testing.T) {
	a := newAdapter(t)
	targets := []Target{
		{Product: product("a", 1.0), Photo: photo(t)},
		{Product: product("b", 1.5), Photo: photo(t)},
		{Product: product("c", 0.9), Photo: photo(t)},
		{Product: product("d", 3.0), Photo: photo(t)},
		{Product: product("e", 0.8), Photo: render.FromBytes([]byte("broken"))},
	}
	out, err := a.Apply(context.Background(), source(0.8), targets)
	if len(out) != len(targets) {
		t.Fatalf("Apply() returned %d outcomes, want %d", len(out), len(targets))
	}
	if len(multierr.Errors(err)) != 1 || !common.HasCode(err, common.CodePreviewRenderFailed) {
		t.Errorf("Apply() error = %v, want single render failure", err)
	}

	want := []string{"AutoApplied", "NeedsManualCrop", "AutoApplied", "NeedsManualCrop", "RenderFailed"}
	for i, o := range out {
		if o.Product() != targets[i].Product.ID {
			t.Errorf("outcome %d is for %q, want %q", i, o.Product(), targets[i].Product.ID)
		}
		if got := kind(o); got != want[i] {
			t.Errorf("outcome %d = %s, want %s", i, got, want[i])
		}
	}
	if _, _, _, ok := Applied(out[4]); ok {
		t.Error("failed render must not look applied")
	}
}

func kind(o Outcome) string {
	switch o.(type) {
	case AutoApplied:
		return "AutoApplied"
	case ManuallyApplied:
		return "ManuallyApplied"
	case NeedsManualCrop:
		return "NeedsManualCrop"
	case RenderFailed:
		return "RenderFailed"
	}
	return "unknown"
}

func TestApply_Rejects(t *testing.T) {
	a := newAdapter(t)

	p := product("x", 1)
	p.Customizable = false
	if _, err := a.Apply(context.Background(), source(1), []Target{{Product: p}}); !common.HasCode(err, common.CodeProductNotCustomizable) {
		t.Errorf("Apply() error = %v, want PRODUCT_NOT_CUSTOMIZABLE", err)
	}
	if _, err := a.Apply(context.Background(), Source{}, nil); err == nil {
		t.Error("Apply() with empty source expected error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Apply(ctx, source(1), []Target{{Product: product("y", 1), Photo: photo(t)}}); !errors.Is(err, context.Canceled) {
		t.Errorf("Apply() with canceled context error = %v", err)
	}
}

func TestApply_TransplantTooSmall(t *testing.T) {
	a := newAdapter(t)
	src := source(1)
	// zoomed in so far that narrower frame falls under minimal crop size
	src.Region = crop.Region{OffsetX: 400, OffsetY: 400, Width: 120, Height: 120, ZoomFactor: 1000.0 / 120, AspectRatio: 1}

	out, err := a.Apply(context.Background(), src, []Target{{Product: product("narrow", 0.75), Photo: photo(t)}})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if _, ok := out[0].(NeedsManualCrop); !ok {
		t.Errorf("outcome = %T, want NeedsManualCrop", out[0])
	}
}

func TestCompleteManualCrop(t *testing.T) {
	a := newAdapter(t)
	cfg := testConfig()
	target := Target{Product: product("b", 1.5), Photo: photo(t)}

	e, err := crop.New(source(1).Logo, 1.5, &cfg.Crop, &cfg.Preview, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	c, err := e.Confirm()
	if err != nil {
		t.Fatal(err)
	}

	m, err := a.CompleteManualCrop(context.Background(), target, c)
	if err != nil {
		t.Fatalf("CompleteManualCrop() error = %v", err)
	}
	if m.Composite == nil || m.Region != c.Region || m.Cropped != c.DataURI {
		t.Errorf("CompleteManualCrop() = %+v", m)
	}
	region, comp, _, ok := Applied(m)
	if !ok || comp != m.Composite || region != c.Region {
		t.Error("Applied() must expose manual crop composite")
	}

	bad := Target{Product: product("bad", 1.5), Photo: render.FromBytes(nil)}
	if _, err := a.CompleteManualCrop(context.Background(), bad, c); !common.HasCode(err, common.CodePreviewRenderFailed) {
		t.Errorf("CompleteManualCrop() error = %v, want PREVIEW_RENDER_FAILED", err)
	}
}
