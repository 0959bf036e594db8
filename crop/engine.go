// Package crop lets user pick part of a logo constrained to print area aspect
// ratio using pan and zoom, and produces cropped raster on confirmation.
package crop

import (
	"errors"
	"fmt"
	"image"
	"math"

	"go.uber.org/zap"

	"logoprev/config"
	"logoprev/geometry"
	"logoprev/utils/images"
)

// ErrConfirmed is returned by pan and zoom after confirmation, re-crop has to
// be requested first.
var ErrConfirmed = errors.New("crop is confirmed, re-crop to adjust")

type Engine struct {
	cfg     *config.CropConfig
	preview *config.PreviewConfig
	log     *zap.Logger

	src    image.Image
	size   geometry.Size
	aspect float64
	state  State
}

// New creates crop engine for source raster and target aspect ratio.
func New(src image.Image, aspect float64, cfg *config.CropConfig, preview *config.PreviewConfig, log *zap.Logger) (*Engine, error) {
	size := geometry.SizeOf(src.Bounds())
	if size.Empty() {
		return nil, errors.New("empty source image")
	}
	if aspect <= 0 || math.IsInf(aspect, 0) || math.IsNaN(aspect) {
		return nil, fmt.Errorf("invalid target aspect ratio %v", aspect)
	}
	return &Engine{
		cfg:     cfg,
		preview: preview,
		log:     log.Named("crop"),
		src:     src,
		size:    size,
		aspect:  aspect,
		state:   Idle{},
	}, nil
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Aspect() float64 {
	return e.aspect
}

// View returns current view, default one when idle.
func (e *Engine) View() View {
	switch s := e.state.(type) {
	case Adjusting:
		return s.View
	case Confirmed:
		return s.View
	default:
		return defaultView
	}
}

// Frame is pixel space rectangle selected by current view.
func (e *Engine) Frame() geometry.Rect {
	return e.frame(e.View())
}

// Region returns confirmed region if there is one.
func (e *Engine) Region() (Region, bool) {
	if c, ok := e.state.(Confirmed); ok {
		return c.Region, true
	}
	return Region{}, false
}

// Pan moves frame by delta in source pixels.
func (e *Engine) Pan(dx, dy float64) (View, error) {
	v := e.View()
	return e.adjust(View{PanX: v.PanX + dx, PanY: v.PanY + dy, Zoom: v.Zoom})
}

// MoveTo places frame at absolute pan position.
func (e *Engine) MoveTo(panX, panY float64) (View, error) {
	return e.adjust(View{PanX: panX, PanY: panY, Zoom: e.View().Zoom})
}

// Zoom changes zoom keeping pan, both are clamped.
func (e *Engine) Zoom(zoom float64) (View, error) {
	v := e.View()
	return e.adjust(View{PanX: v.PanX, PanY: v.PanY, Zoom: zoom})
}

func (e *Engine) adjust(v View) (View, error) {
	if _, ok := e.state.(Confirmed); ok {
		return e.View(), ErrConfirmed
	}
	v = e.restrict(v)
	e.state = Adjusting{View: v}
	return v, nil
}

// restrict clamps zoom to configured range and pan so frame stays inside
// source.
func (e *Engine) restrict(v View) View {
	if math.IsNaN(v.Zoom) {
		v.Zoom = e.cfg.MinZoom
	}
	v.Zoom = math.Min(math.Max(v.Zoom, e.cfg.MinZoom), e.cfg.MaxZoom)

	fs := frameSize(e.size, e.aspect, v.Zoom)
	maxX, maxY := (e.size.Width-fs.Width)/2, (e.size.Height-fs.Height)/2
	v.PanX = clamp(nanToZero(v.PanX), -maxX, maxX)
	v.PanY = clamp(nanToZero(v.PanY), -maxY, maxY)
	return v
}

func (e *Engine) frame(v View) geometry.Rect {
	fs := frameSize(e.size, e.aspect, v.Zoom)
	return geometry.Rect{
		X:      (e.size.Width-fs.Width)/2 + v.PanX,
		Y:      (e.size.Height-fs.Height)/2 + v.PanY,
		Width:  fs.Width,
		Height: fs.Height,
	}
}

// Confirm accepts current frame. Frame below minimal size is rejected and
// state is left untouched.
func (e *Engine) Confirm() (Confirmed, error) {
	if c, ok := e.state.(Confirmed); ok {
		return c, nil
	}

	v := e.View()
	f := e.frame(v)
	r := Region{
		OffsetX:     math.Max(f.X, 0),
		OffsetY:     math.Max(f.Y, 0),
		Width:       f.Width,
		Height:      f.Height,
		ZoomFactor:  v.Zoom,
		AspectRatio: e.aspect,
	}
	if err := r.Check(e.cfg.MinSize); err != nil {
		e.log.Debug("Crop rejected", zap.Stringer("frame", f), zap.Error(err))
		return Confirmed{}, err
	}

	img := Cut(e.src, r)
	data, err := images.Encode(img, e.preview.Format, e.preview.JPEGQuality)
	if err != nil {
		return Confirmed{}, fmt.Errorf("unable to encode cropped logo: %w", err)
	}

	c := Confirmed{
		View:    v,
		Region:  r,
		Image:   img,
		DataURI: images.DataURI(e.preview.Format.MimeType(), data),
	}
	e.state = c
	e.log.Debug("Crop confirmed", zap.Stringer("region", r.Rect()), zap.Float64("zoom", v.Zoom))
	return c, nil
}

// Recrop returns confirmed crop to adjusting keeping its view.
func (e *Engine) Recrop() View {
	v := e.View()
	e.state = Adjusting{View: v}
	return v
}

// Reset discards any adjustment and confirmed region.
func (e *Engine) Reset() {
	e.state = Idle{}
}

func nanToZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
