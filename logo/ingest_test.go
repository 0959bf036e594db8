package logo

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"logoprev/common"
	"logoprev/config"
)

func testConfig() *config.IngestConfig {
	return &config.IngestConfig{MaxFileSize: 1 << 20, MinWidth: 300, MinHeight: 300}
}

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}
	return buf.Bytes()
}

const testSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100" width="200" height="100">
  <rect x="10" y="10" width="180" height="80" fill="#ff0000"/>
</svg>`

func TestIngest(t *testing.T) {
	tests := []struct {
		name     string
		data     func(t *testing.T) []byte
		kind     common.LogoKind
		w, h     int
		warnings int
	}{
		{"png", func(t *testing.T) []byte { return makePNG(t, 400, 320) }, common.LogoKindPng, 400, 320, 0},
		{"jpeg", func(t *testing.T) []byte { return makeJPEG(t, 640, 480) }, common.LogoKindJpeg, 640, 480, 0},
		{"small png", func(t *testing.T) []byte { return makePNG(t, 120, 500) }, common.LogoKindPng, 120, 500, 1},
		{"svg", func(*testing.T) []byte { return []byte(testSVG) }, common.LogoKindSvg, 0, 0, 0},
		{"svg without prolog", func(*testing.T) []byte { return []byte("\n  <svg xmlns=\"http://www.w3.org/2000/svg\" width=\"10\" height=\"10\"></svg>") }, common.LogoKindSvg, 0, 0, 0},
	}

	in := NewIngestor(testConfig(), zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.data(t)
			a, err := in.Ingest(context.Background(), "logo."+tt.kind.String(), bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Ingest() error = %v", err)
			}
			if a.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", a.Kind, tt.kind)
			}
			if a.Width != tt.w || a.Height != tt.h {
				t.Errorf("dimensions = %dx%d, want %dx%d", a.Width, a.Height, tt.w, tt.h)
			}
			if a.ByteSize != int64(len(data)) {
				t.Errorf("ByteSize = %d, want %d", a.ByteSize, len(data))
			}
			if !strings.HasPrefix(a.PreviewURI(), "data:"+tt.kind.MimeType()+";base64,") {
				t.Errorf("PreviewURI = %.40s...", a.PreviewURI())
			}
			if got := len(a.Warnings()); got != tt.warnings {
				t.Errorf("Warnings() = %v, want %d entries", a.Warnings(), tt.warnings)
			}
			if tt.warnings > 0 && a.Warnings()[0].Code != common.CodeSmallLogo {
				t.Errorf("warning code = %s, want SMALL_LOGO", a.Warnings()[0].Code)
			}
			if tt.kind.IsVector() != (a.Dimensions() == nil) {
				t.Errorf("Dimensions() = %v for %s", a.Dimensions(), tt.kind)
			}
		})
	}
}

func TestIngest_Rejects(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	truncated := makePNG(t, 50, 50)[:60]

	tests := []struct {
		name string
		data []byte
		code common.Code
	}{
		{"text", []byte("hello world"), common.CodeInvalidFileType},
		{"empty", nil, common.CodeInvalidFileType},
		{"gif", gif, common.CodeInvalidFileType},
		{"corrupt png", truncated, common.CodeInvalidFileType},
		{"too large", append(makePNG(t, 10, 10), bytes.Repeat([]byte{0}, 1<<20)...), common.CodeFileTooLarge},
		{"too large pdf", append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte{0}, 1<<20)...), common.CodeInvalidFileType},
	}

	in := NewIngestor(testConfig(), zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := in.Ingest(context.Background(), tt.name, bytes.NewReader(tt.data))
			if a != nil {
				t.Errorf("Ingest() returned asset for rejected input")
			}
			if !common.HasCode(err, tt.code) {
				t.Errorf("Ingest() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestIngest_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := NewIngestor(testConfig(), zaptest.NewLogger(t))
	if _, err := in.Ingest(ctx, "logo.png", bytes.NewReader(makePNG(t, 10, 10))); !errors.Is(err, context.Canceled) {
		t.Errorf("Ingest() error = %v, want context.Canceled", err)
	}
}

func TestIngestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "company.png")
	if err := os.WriteFile(path, makePNG(t, 300, 300), 0644); err != nil {
		t.Fatal(err)
	}

	in := NewIngestor(testConfig(), zaptest.NewLogger(t))
	a, err := in.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}
	if a.FileName != "company.png" {
		t.Errorf("FileName = %q", a.FileName)
	}
	if len(a.Warnings()) != 0 {
		t.Errorf("300x300 logo must not be flagged, got %v", a.Warnings())
	}

	cfg := testConfig()
	cfg.MaxFileSize = 10
	small := NewIngestor(cfg, zaptest.NewLogger(t))
	if _, err := small.IngestFile(context.Background(), path); !common.HasCode(err, common.CodeFileTooLarge) {
		t.Errorf("IngestFile() error = %v, want FILE_TOO_LARGE", err)
	}
	pdf := filepath.Join(dir, "company.pdf")
	if err := os.WriteFile(pdf, append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte{' '}, 64)...), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := small.IngestFile(context.Background(), pdf); !common.HasCode(err, common.CodeInvalidFileType) {
		t.Errorf("IngestFile() of oversized pdf error = %v, want INVALID_FILE_TYPE", err)
	}
	if _, err := in.IngestFile(context.Background(), dir); err == nil {
		t.Error("IngestFile() on directory expected error")
	}
}

func TestAsset_ImageAndRelease(t *testing.T) {
	in := NewIngestor(testConfig(), zaptest.NewLogger(t))
	ctx := context.Background()

	svg, err := in.Ingest(ctx, "logo.svg", strings.NewReader(testSVG))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	img, err := svg.Image(ctx)
	if err != nil {
		t.Fatalf("Image() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("rasterized SVG = %dx%d, want 200x100", b.Dx(), b.Dy())
	}
	again, _ := svg.Image(ctx)
	if again != img {
		t.Error("Image() must reuse rasterized image")
	}

	svg.Release()
	svg.Release()
	if !svg.Released() || svg.PreviewURI() != "" {
		t.Error("Release() must drop preview handle")
	}
	if _, err := svg.Image(ctx); !errors.Is(err, ErrReleased) {
		t.Errorf("Image() after release error = %v, want ErrReleased", err)
	}
	if _, err := svg.Data(); !errors.Is(err, ErrReleased) {
		t.Errorf("Data() after release error = %v, want ErrReleased", err)
	}
}

func TestAsset_VectorRasterSize(t *testing.T) {
	tests := []struct {
		name         string
		size         int
		svg          string
		wantW, wantH int
	}{
		{"intrinsic", 0, testSVG, 200, 100},
		{"scaled up", 300, testSVG, 600, 300},
		{"large enough", 50, testSVG, 200, 100},
		{"tiny icon", 300, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64" width="64" height="64"><circle cx="32" cy="32" r="30"/></svg>`, 300, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.VectorRasterSize = tt.size
			a, err := NewIngestor(cfg, zaptest.NewLogger(t)).Ingest(context.Background(), "logo.svg", strings.NewReader(tt.svg))
			if err != nil {
				t.Fatalf("Ingest() error = %v", err)
			}
			img, err := a.Image(context.Background())
			if err != nil {
				t.Fatalf("Image() error = %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("rasterized SVG = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestIngest_DistinctIDs(t *testing.T) {
	in := NewIngestor(testConfig(), zaptest.NewLogger(t))
	data := makePNG(t, 20, 20)
	a, _ := in.Ingest(context.Background(), "a.png", bytes.NewReader(data))
	b, _ := in.Ingest(context.Background(), "a.png", bytes.NewReader(data))
	if a == nil || b == nil || a.ID == b.ID {
		t.Error("re-ingestion must produce a new identifier")
	}
}
