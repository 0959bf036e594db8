// Package geometry implements contain-fit scaling and mapping of product
// print areas into preview surface coordinates.
package geometry

import (
	"fmt"
	"image"
	"math"

	"logoprev/catalog"
)

// Epsilon absorbs floating point noise when comparing derived coordinates.
const Epsilon = 1e-9

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) Aspect() float64 {
	if s.Height <= 0 {
		return 0
	}
	return s.Width / s.Height
}

func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

func SizeOf(r image.Rectangle) Size {
	return Size{Width: float64(r.Dx()), Height: float64(r.Dy())}
}

// Rect is axis aligned rectangle in floating point pixel space.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.2f,%.2f %.2fx%.2f)", r.X, r.Y, r.Width, r.Height)
}

func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Contains reports whether o lies fully inside r, tolerating Epsilon.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X-Epsilon && o.Y >= r.Y-Epsilon &&
		o.X+o.Width <= r.X+r.Width+Epsilon &&
		o.Y+o.Height <= r.Y+r.Height+Epsilon
}

// Image rounds rectangle to integer pixel grid. Rounding is done on edges so
// adjacent rectangles do not overlap or leave gaps.
func (r Rect) Image() image.Rectangle {
	x0, y0 := int(math.Round(r.X)), int(math.Round(r.Y))
	x1, y1 := int(math.Round(r.X+r.Width)), int(math.Round(r.Y+r.Height))
	return image.Rect(x0, y0, x1, y1)
}

// ContainFit scales inner uniformly to fit entirely within outer, touching
// outer on at least one axis, and centers it. Degenerate sizes produce empty
// rectangle positioned at outer center.
func ContainFit(inner Size, outer Rect) Rect {
	if inner.Empty() || outer.Width <= 0 || outer.Height <= 0 {
		return Rect{X: outer.X + outer.Width/2, Y: outer.Y + outer.Height/2}
	}

	innerAspect, outerAspect := inner.Aspect(), outer.Width/outer.Height

	var w, h float64
	if innerAspect > outerAspect {
		w, h = outer.Width, outer.Width/innerAspect
	} else {
		w, h = outer.Height*innerAspect, outer.Height
	}
	return Rect{
		X:      outer.X + (outer.Width-w)/2,
		Y:      outer.Y + (outer.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// Mapping describes how product photo and its print area land on preview
// surface.
type Mapping struct {
	Scale float64 `json:"scale"`
	Photo Rect    `json:"photo"`
	Area  Rect    `json:"area"`
}

// MapPrintArea translates print area given in product photo pixel space into
// coordinate space of a surface where photo is contain-fitted.
func MapPrintArea(area catalog.PrintArea, photo, surface Size) (Mapping, error) {
	if photo.Empty() {
		return Mapping{}, fmt.Errorf("invalid photo size %gx%g", photo.Width, photo.Height)
	}
	if surface.Empty() {
		return Mapping{}, fmt.Errorf("invalid surface size %gx%g", surface.Width, surface.Height)
	}
	if err := area.Validate(); err != nil {
		return Mapping{}, err
	}

	scale := math.Min(surface.Width/photo.Width, surface.Height/photo.Height)
	offX := (surface.Width - photo.Width*scale) / 2
	offY := (surface.Height - photo.Height*scale) / 2

	return Mapping{
		Scale: scale,
		Photo: Rect{X: offX, Y: offY, Width: photo.Width * scale, Height: photo.Height * scale},
		Area: Rect{
			X:      offX + area.OffsetX*scale,
			Y:      offY + area.OffsetY*scale,
			Width:  area.PixelWidth * scale,
			Height: area.PixelHeight * scale,
		},
	}, nil
}

// AspectDiff is relative difference of target aspect against source aspect.
func AspectDiff(source, target float64) float64 {
	if source <= 0 {
		return math.Inf(1)
	}
	return math.Abs(target-source) / source
}

// WithinTolerance compares aspect difference to tolerance inclusively.
func WithinTolerance(diff, tolerance float64) bool {
	return diff <= tolerance+Epsilon
}
