// Package catalog describes read-only product data the engine consumes from
// catalog collaborator: print area geometry, customizable flag, base photo
// and price.
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	yaml "gopkg.in/yaml.v3"

	"logoprev/common"
)

// PrintArea is placement of printable region in product photo pixel space
// together with its physical size.
type PrintArea struct {
	OffsetX          float64 `yaml:"offset_x" json:"offsetX"`
	OffsetY          float64 `yaml:"offset_y" json:"offsetY"`
	PixelWidth       float64 `yaml:"pixel_width" json:"pixelWidth"`
	PixelHeight      float64 `yaml:"pixel_height" json:"pixelHeight"`
	PhysicalWidthCm  float64 `yaml:"physical_width_cm" json:"physicalWidthCm"`
	PhysicalHeightCm float64 `yaml:"physical_height_cm" json:"physicalHeightCm"`
}

// AspectRatio of print area in pixel space.
func (a PrintArea) AspectRatio() float64 {
	if a.PixelHeight <= 0 {
		return 0
	}
	return a.PixelWidth / a.PixelHeight
}

// Validate checks print area invariants.
func (a PrintArea) Validate() error {
	switch {
	case a.PhysicalWidthCm <= 0 || a.PhysicalHeightCm <= 0:
		return common.NewError(common.CodeInvalidPrintArea, "physicalSize",
			"physical size must be positive, got %gx%g cm", a.PhysicalWidthCm, a.PhysicalHeightCm)
	case a.PixelWidth <= 0 || a.PixelHeight <= 0:
		return common.NewError(common.CodeInvalidPrintArea, "pixelSize",
			"pixel size must be positive, got %gx%g", a.PixelWidth, a.PixelHeight)
	case a.OffsetX < 0 || a.OffsetY < 0:
		return common.NewError(common.CodeInvalidPrintArea, "offset",
			"offset must not be negative, got %g,%g", a.OffsetX, a.OffsetY)
	}
	return nil
}

type ProductImage struct {
	ImageURL string `yaml:"image_url" json:"imageUrl"`
}

// ProductDetail is the subset of catalog product the engine needs.
type ProductDetail struct {
	ID           string          `yaml:"id" json:"id"`
	Name         string          `yaml:"name" json:"name"`
	Customizable bool            `yaml:"customizable" json:"customizable"`
	Price        decimal.Decimal `yaml:"price" json:"price"`
	PrintArea    *PrintArea      `yaml:"print_area,omitempty" json:"printArea,omitempty"`
	Images       []ProductImage  `yaml:"images" json:"images"`
}

// CheckCustomizable reports whether logo could be placed on product.
func (p *ProductDetail) CheckCustomizable() error {
	if !p.Customizable || p.PrintArea == nil {
		return common.NewError(common.CodeProductNotCustomizable, "product", "product %q does not allow customization", p.ID)
	}
	return p.PrintArea.Validate()
}

// PhotoURL returns base product photo reference, first image is always used.
func (p *ProductDetail) PhotoURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].ImageURL
}

// Catalog is a list of products loaded from YAML export.
type Catalog struct {
	Products []ProductDetail `yaml:"products"`

	dir string
}

// Load reads catalog from file. Photo references are resolved relative to
// catalog location.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read catalog: %w", err)
	}

	c := &Catalog{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("unable to decode catalog %q: %w", path, err)
	}

	seen := make(map[string]struct{}, len(c.Products))
	for i := range c.Products {
		p := &c.Products[i]
		if len(p.ID) == 0 {
			return nil, fmt.Errorf("catalog %q: product #%d has no id", path, i+1)
		}
		if _, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("catalog %q: duplicate product id %q", path, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	if c.dir, err = filepath.Abs(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return c, nil
}

// Product looks up product by id.
func (c *Catalog) Product(id string) (*ProductDetail, error) {
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i], nil
		}
	}
	return nil, common.NewError(common.CodeProductNotFound, "productId", "product %q is not in catalog", id)
}

// ReadPhoto returns encoded base photo of the product.
func (c *Catalog) ReadPhoto(p *ProductDetail) ([]byte, error) {
	ref := p.PhotoURL()
	if len(ref) == 0 {
		return nil, fmt.Errorf("product %q has no images", p.ID)
	}
	path := strings.TrimPrefix(ref, "file://")
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, filepath.FromSlash(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read photo of product %q: %w", p.ID, err)
	}
	return data, nil
}
