package images

import "testing"

func TestRasterizeSVGToImage(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50"/></svg>`)

	tests := []struct {
		name         string
		targetW      int
		targetH      int
		wantW, wantH int
	}{
		{"intrinsic", 0, 0, 100, 50},
		{"scale_by_width", 200, 0, 200, 100},
		{"scale_by_height", 0, 200, 400, 200},
		{"fit_box", 150, 150, 150, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := RasterizeSVGToImage(svg, tt.targetW, tt.targetH)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
				t.Fatalf("unexpected bounds: %v", img.Bounds())
			}
		})
	}
}

func TestRasterizeSVGToImage_ClampsHugeViewBox(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100000 50000"><rect width="10" height="10"/></svg>`)

	saved := maxRasterDim
	maxRasterDim = 512
	defer func() { maxRasterDim = saved }()

	img, err := RasterizeSVGToImage(svg, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds().Dx() != 512 || img.Bounds().Dy() != 256 {
		t.Fatalf("unexpected bounds: %v", img.Bounds())
	}
}

func TestRasterizeSVGToImage_Transparent(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><rect x="40" y="40" width="20" height="20"/></svg>`)
	img, err := RasterizeSVGToImage(svg, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner alpha = %d, want transparent", a)
	}
	if _, _, _, a := img.At(50, 50).RGBA(); a == 0 {
		t.Error("center pixel should be painted")
	}
}
