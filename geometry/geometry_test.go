package geometry

import (
	"image"
	"math"
	"testing"

	"logoprev/catalog"
	"logoprev/common"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestContainFit(t *testing.T) {
	tests := []struct {
		name  string
		inner Size
		outer Rect
		want  Rect
	}{
		{"wide into square", Size{200, 100}, Rect{0, 0, 100, 100}, Rect{0, 25, 100, 50}},
		{"tall into square", Size{100, 400}, Rect{10, 10, 100, 100}, Rect{47.5, 10, 25, 100}},
		{"same aspect", Size{40, 50}, Rect{5, 5, 80, 100}, Rect{5, 5, 80, 100}},
		{"upscale", Size{10, 10}, Rect{0, 0, 300, 200}, Rect{50, 0, 200, 200}},
		{"degenerate inner", Size{0, 10}, Rect{0, 0, 100, 50}, Rect{50, 25, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContainFit(tt.inner, tt.outer)
			if !almost(got.X, tt.want.X) || !almost(got.Y, tt.want.Y) ||
				!almost(got.Width, tt.want.Width) || !almost(got.Height, tt.want.Height) {
				t.Errorf("ContainFit() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestContainFit_Invariant(t *testing.T) {
	outers := []Rect{{0, 0, 800, 800}, {120.5, 33.3, 417.7, 91.1}, {3, 4, 1, 1000}}
	for _, outer := range outers {
		for w := 1.0; w < 2000; w *= 1.7 {
			for h := 1.0; h < 2000; h *= 2.3 {
				got := ContainFit(Size{w, h}, outer)
				if !outer.Contains(got) {
					t.Fatalf("ContainFit(%gx%g, %s) = %s escapes outer", w, h, outer, got)
				}
				if !almost(got.Width, outer.Width) && !almost(got.Height, outer.Height) {
					t.Fatalf("ContainFit(%gx%g, %s) = %s touches no edge", w, h, outer, got)
				}
				if !almost(got.Width/got.Height, w/h) {
					t.Fatalf("ContainFit(%gx%g, %s) = %s distorts aspect", w, h, outer, got)
				}
			}
		}
	}
}

func TestMapPrintArea(t *testing.T) {
	area := catalog.PrintArea{OffsetX: 100, OffsetY: 200, PixelWidth: 400, PixelHeight: 500, PhysicalWidthCm: 20, PhysicalHeightCm: 25}

	m, err := MapPrintArea(area, Size{1000, 2000}, Size{800, 800})
	if err != nil {
		t.Fatalf("MapPrintArea() error = %v", err)
	}
	if !almost(m.Scale, 0.4) {
		t.Errorf("Scale = %v, want 0.4", m.Scale)
	}
	wantPhoto := Rect{200, 0, 400, 800}
	if !almost(m.Photo.X, wantPhoto.X) || !almost(m.Photo.Width, wantPhoto.Width) || !almost(m.Photo.Height, wantPhoto.Height) {
		t.Errorf("Photo = %s, want %s", m.Photo, wantPhoto)
	}
	wantArea := Rect{240, 80, 160, 200}
	if !almost(m.Area.X, wantArea.X) || !almost(m.Area.Y, wantArea.Y) ||
		!almost(m.Area.Width, wantArea.Width) || !almost(m.Area.Height, wantArea.Height) {
		t.Errorf("Area = %s, want %s", m.Area, wantArea)
	}
}

func TestMapPrintArea_Errors(t *testing.T) {
	area := catalog.PrintArea{PixelWidth: 10, PixelHeight: 10, PhysicalWidthCm: 1, PhysicalHeightCm: 1}
	if _, err := MapPrintArea(area, Size{0, 10}, Size{800, 800}); err == nil {
		t.Error("MapPrintArea() with empty photo expected error")
	}
	if _, err := MapPrintArea(area, Size{10, 10}, Size{}); err == nil {
		t.Error("MapPrintArea() with empty surface expected error")
	}
	area.PhysicalWidthCm = 0
	if _, err := MapPrintArea(area, Size{10, 10}, Size{800, 800}); !common.HasCode(err, common.CodeInvalidPrintArea) {
		t.Errorf("MapPrintArea() error = %v, want INVALID_PRINT_AREA", err)
	}
}

func TestAspectTolerance(t *testing.T) {
	tests := []struct {
		name           string
		source, target float64
		within         bool
	}{
		{"close", 0.8, 1.0, true},
		{"far", 0.8, 1.5, false},
		{"exact boundary", 1.0, 1.3, true},
		{"just past boundary", 1.0, 1.3001, false},
		{"boundary below", 1.0, 0.7, true},
		{"invalid source", 0, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinTolerance(AspectDiff(tt.source, tt.target), 0.30); got != tt.within {
				t.Errorf("WithinTolerance(AspectDiff(%v, %v)) = %v, want %v", tt.source, tt.target, got, tt.within)
			}
		})
	}
}

func TestRectImage(t *testing.T) {
	r := Rect{10.4, 10.6, 99.8, 50.2}
	if got, want := r.Image(), image.Rect(10, 11, 110, 61); got != want {
		t.Errorf("Image() = %v, want %v", got, want)
	}
}
