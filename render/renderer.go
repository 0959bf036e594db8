// Package render draws product photo and cropped logo into a single
// composite raster and produces watermarked downloadable artifacts.
package render

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/image/font/opentype"
	"golang.org/x/sync/errgroup"

	"logoprev/catalog"
	"logoprev/common"
	"logoprev/config"
	"logoprev/geometry"
	"logoprev/utils/images"
)

// Request is immutable snapshot of everything needed to draw composite.
type Request struct {
	Photo Source
	Logo  Source
	Area  catalog.PrintArea
}

// Composite is rendered preview. It is derived data and is recomputed
// whenever logo, crop or print area changes.
type Composite struct {
	Image      *image.NRGBA
	DataURI    string
	RenderedAt time.Time
	Duration   time.Duration
	Mapping    geometry.Mapping
	LogoRect   geometry.Rect
}

// MarshalJSON produces boundary shape of preview composite.
func (c *Composite) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RasterDataURI       string  `json:"rasterDataUri"`
		RenderedAtTimestamp int64   `json:"renderedAtTimestamp"`
		RenderDurationMs    float64 `json:"renderDurationMs"`
	}{
		RasterDataURI:       c.DataURI,
		RenderedAtTimestamp: c.RenderedAt.UnixMilli(),
		RenderDurationMs:    float64(c.Duration.Microseconds()) / 1000,
	})
}

type Renderer struct {
	preview  *config.PreviewConfig
	download *config.DownloadConfig
	log      *zap.Logger

	bg   color.NRGBA
	font *opentype.Font
	now  func() time.Time
}

func NewRenderer(preview *config.PreviewConfig, download *config.DownloadConfig, log *zap.Logger) (*Renderer, error) {
	r := &Renderer{
		preview:  preview,
		download: download,
		log:      log.Named("render"),
		bg:       color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		now:      time.Now,
	}
	if len(preview.Background) > 0 {
		bg, err := parseHexColor(preview.Background)
		if err != nil {
			return nil, err
		}
		r.bg = bg
	}
	f, err := loadFont(download.FontPath)
	if err != nil {
		return nil, err
	}
	r.font = f
	return r, nil
}

// Render draws preview composite on configured surface. On failure caller
// keeps whatever composite it had before.
func (r *Renderer) Render(ctx context.Context, req Request) (*Composite, error) {
	start := r.now()

	img, m, logoRect, err := r.compose(ctx, req, r.preview.SurfaceSize)
	if err != nil {
		return nil, err
	}

	data, err := images.Encode(img, r.preview.Format, r.preview.JPEGQuality)
	if err != nil {
		return nil, common.WrapError(common.CodePreviewRenderFailed, "preview", err)
	}

	finished := r.now()
	c := &Composite{
		Image:      img,
		DataURI:    images.DataURI(r.preview.Format.MimeType(), data),
		RenderedAt: finished,
		Duration:   finished.Sub(start),
		Mapping:    m,
		LogoRect:   logoRect,
	}
	if r.preview.RenderBudget > 0 && c.Duration > r.preview.RenderBudget {
		r.log.Warn("Preview rendering is over budget",
			zap.Duration("elapsed", c.Duration), zap.Duration("budget", r.preview.RenderBudget))
	} else {
		r.log.Debug("Preview rendered", zap.Duration("elapsed", c.Duration), zap.Stringer("logo", logoRect))
	}
	return c, nil
}

// compose decodes sources concurrently, contain-fits photo into square
// surface and contain-fits logo into mapped print area.
func (r *Renderer) compose(ctx context.Context, req Request, surface int) (*image.NRGBA, geometry.Mapping, geometry.Rect, error) {
	var photo, logo image.Image

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if photo, err = req.Photo.decode(gctx); err != nil && ctx.Err() == nil {
			err = common.WrapError(common.CodePreviewRenderFailed, "photo", err)
		}
		return err
	})
	g.Go(func() (err error) {
		if logo, err = req.Logo.decode(gctx); err != nil && ctx.Err() == nil {
			err = common.WrapError(common.CodePreviewRenderFailed, "logo", err)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, geometry.Mapping{}, geometry.Rect{}, ctx.Err()
		}
		return nil, geometry.Mapping{}, geometry.Rect{}, err
	}

	side := float64(surface)
	m, err := geometry.MapPrintArea(req.Area, geometry.SizeOf(photo.Bounds()), geometry.Size{Width: side, Height: side})
	if err != nil {
		return nil, geometry.Mapping{}, geometry.Rect{}, err
	}
	logoRect := geometry.ContainFit(geometry.SizeOf(logo.Bounds()), m.Area)

	dst := imaging.New(surface, surface, r.bg)
	dst = overlayResized(dst, photo, m.Photo)
	dst = overlayResized(dst, logo, logoRect)

	if err := ctx.Err(); err != nil {
		return nil, geometry.Mapping{}, geometry.Rect{}, err
	}
	return dst, m, logoRect, nil
}

func overlayResized(dst *image.NRGBA, src image.Image, at geometry.Rect) *image.NRGBA {
	pr := at.Image()
	if pr.Dx() < 1 || pr.Dy() < 1 {
		return dst
	}
	if pr.Dx() != src.Bounds().Dx() || pr.Dy() != src.Bounds().Dy() {
		src = imaging.Resize(src, pr.Dx(), pr.Dy(), imaging.Lanczos)
	}
	return imaging.Overlay(dst, src, pr.Min, 1.0)
}
