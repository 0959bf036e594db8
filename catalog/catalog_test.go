package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"logoprev/common"
)

const testCatalog = `products:
  - id: tshirt-1
    name: Classic T-Shirt
    customizable: true
    price: "19.99"
    print_area:
      offset_x: 100
      offset_y: 150
      pixel_width: 400
      pixel_height: 500
      physical_width_cm: 20
      physical_height_cm: 25
    images:
      - image_url: photos/tshirt.png
  - id: mug-1
    name: Mug
    customizable: false
    price: "7.50"
    images:
      - image_url: file:///tmp/mug.png
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCatalog(t, testCatalog)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.Products) != 2 {
		t.Fatalf("Load() products = %d, want 2", len(c.Products))
	}

	p, err := c.Product("tshirt-1")
	if err != nil {
		t.Fatalf("Product() error = %v", err)
	}
	if !p.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("Price = %s, want 19.99", p.Price)
	}
	if p.PrintArea == nil || p.PrintArea.AspectRatio() != 0.8 {
		t.Errorf("PrintArea = %+v, want aspect 0.8", p.PrintArea)
	}
	if err := p.CheckCustomizable(); err != nil {
		t.Errorf("CheckCustomizable() error = %v", err)
	}

	mug, _ := c.Product("mug-1")
	if err := mug.CheckCustomizable(); !common.HasCode(err, common.CodeProductNotCustomizable) {
		t.Errorf("CheckCustomizable() on mug error = %v, want PRODUCT_NOT_CUSTOMIZABLE", err)
	}

	if _, err := c.Product("nope"); !common.HasCode(err, common.CodeProductNotFound) {
		t.Errorf("Product(nope) error = %v, want PRODUCT_NOT_FOUND", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "products:\n  - id: a\n    colour: red\n", "field colour not found"},
		{"missing id", "products:\n  - name: a\n", "has no id"},
		{"duplicate id", "products:\n  - id: a\n  - id: a\n", "duplicate product id"},
		{"bad price", "products:\n  - id: a\n    price: abc\n", "decode catalog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCatalog(t, tt.content))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of missing file expected error")
	}
}

func TestReadPhoto(t *testing.T) {
	path := writeCatalog(t, testCatalog)
	dir := filepath.Join(filepath.Dir(path), "photos")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tshirt.png"), []byte("photo"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	p, _ := c.Product("tshirt-1")
	data, err := c.ReadPhoto(p)
	if err != nil {
		t.Fatalf("ReadPhoto() error = %v", err)
	}
	if string(data) != "photo" {
		t.Errorf("ReadPhoto() = %q", data)
	}

	if _, err := c.ReadPhoto(&ProductDetail{ID: "x"}); err == nil {
		t.Error("ReadPhoto() without images expected error")
	}
}

func TestPrintArea_Validate(t *testing.T) {
	good := PrintArea{PixelWidth: 400, PixelHeight: 500, PhysicalWidthCm: 20, PhysicalHeightCm: 25}
	tests := []struct {
		name   string
		mutate func(*PrintArea)
		field  string
	}{
		{"valid", func(*PrintArea) {}, ""},
		{"zero physical width", func(a *PrintArea) { a.PhysicalWidthCm = 0 }, "physicalSize"},
		{"negative physical height", func(a *PrintArea) { a.PhysicalHeightCm = -1 }, "physicalSize"},
		{"zero pixel height", func(a *PrintArea) { a.PixelHeight = 0 }, "pixelSize"},
		{"negative offset", func(a *PrintArea) { a.OffsetX = -5 }, "offset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := good
			tt.mutate(&a)
			err := a.Validate()
			if len(tt.field) == 0 {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			var e *common.Error
			if !errors.As(err, &e) || e.Code != common.CodeInvalidPrintArea || e.Field != tt.field {
				t.Errorf("Validate() error = %v, want INVALID_PRINT_AREA [%s]", err, tt.field)
			}
		})
	}
}
