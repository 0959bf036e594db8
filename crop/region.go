package crop

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"logoprev/common"
	"logoprev/geometry"
)

// Region is confirmed crop rectangle in logo pixel space. ZoomFactor is the
// interactive scale it was picked with.
type Region struct {
	OffsetX     float64 `json:"offsetX"`
	OffsetY     float64 `json:"offsetY"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	ZoomFactor  float64 `json:"zoomFactor"`
	AspectRatio float64 `json:"aspectRatio"`
}

func (r Region) Rect() geometry.Rect {
	return geometry.Rect{X: r.OffsetX, Y: r.OffsetY, Width: r.Width, Height: r.Height}
}

// Check verifies region geometry. Size is checked first, a region which is
// both too small and misplaced reports CROP_TOO_SMALL.
func (r Region) Check(minSize float64) error {
	if r.Width < minSize || r.Height < minSize {
		return common.NewError(common.CodeCropTooSmall, "crop",
			"crop %.0fx%.0f is below %.0fx%.0f", r.Width, r.Height, minSize, minSize)
	}
	if r.OffsetX < 0 || r.OffsetY < 0 {
		return common.NewError(common.CodeInvalidCrop, "crop", "negative crop offset %g,%g", r.OffsetX, r.OffsetY)
	}
	return nil
}

// pixelRect rounds region to integer pixels keeping rounded size intact and
// shifting rectangle back inside bounds if rounding pushed it out.
func (r Region) pixelRect(bounds image.Rectangle) image.Rectangle {
	w, h := int(math.Round(r.Width)), int(math.Round(r.Height))
	w, h = min(w, bounds.Dx()), min(h, bounds.Dy())

	x := min(max(int(math.Round(r.OffsetX)), 0), bounds.Dx()-w)
	y := min(max(int(math.Round(r.OffsetY)), 0), bounds.Dy()-h)

	return image.Rect(x, y, x+w, y+h).Add(bounds.Min)
}

// Cut copies region out of source into new raster of exactly rounded region
// size.
func Cut(src image.Image, r Region) *image.NRGBA {
	return imaging.Crop(src, r.pixelRect(src.Bounds()))
}

// frameSize is the largest rectangle of given aspect that fits into source
// shrunk by zoom.
func frameSize(src geometry.Size, aspect, zoom float64) geometry.Size {
	fit := geometry.ContainFit(geometry.Size{Width: aspect, Height: 1}, geometry.Rect{Width: src.Width, Height: src.Height})
	return geometry.Size{Width: fit.Width / zoom, Height: fit.Height / zoom}
}

// Transplant builds region with different aspect ratio around the same
// center and with the same zoom, clamped to source bounds.
func Transplant(r Region, src geometry.Size, aspect float64) Region {
	zoom := r.ZoomFactor
	if zoom <= 0 {
		zoom = 1
	}
	fs := frameSize(src, aspect, zoom)
	cx, cy := r.OffsetX+r.Width/2, r.OffsetY+r.Height/2

	x := clamp(cx-fs.Width/2, 0, src.Width-fs.Width)
	y := clamp(cy-fs.Height/2, 0, src.Height-fs.Height)
	return Region{
		OffsetX:     x,
		OffsetY:     y,
		Width:       fs.Width,
		Height:      fs.Height,
		ZoomFactor:  zoom,
		AspectRatio: aspect,
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
