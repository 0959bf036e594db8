// Package multiproduct replicates accepted customization across additional
// products with different print area geometry.
package multiproduct

import (
	"context"
	"errors"
	"fmt"
	"image"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"logoprev/catalog"
	"logoprev/config"
	"logoprev/crop"
	"logoprev/geometry"
	"logoprev/render"
	"logoprev/utils/images"
)

// Target product and its base photo.
type Target struct {
	Product *catalog.ProductDetail
	Photo   render.Source
}

// Source is accepted customization of the original product.
type Source struct {
	// Logo is full logo raster crop was made from.
	Logo   image.Image
	Region crop.Region
}

type Adapter struct {
	cfg      *config.MultiProductConfig
	crop     *config.CropConfig
	preview  *config.PreviewConfig
	renderer *render.Renderer
	log      *zap.Logger
}

func NewAdapter(cfg *config.EngineConfig, renderer *render.Renderer, log *zap.Logger) *Adapter {
	return &Adapter{
		cfg:      &cfg.MultiProduct,
		crop:     &cfg.Crop,
		preview:  &cfg.Preview,
		renderer: renderer,
		log:      log.Named("multiproduct"),
	}
}

// Apply decides for every target whether source crop could be transplanted
// and renders composites for those which could. Outcomes are returned in
// targets order. Render failures do not stop other targets, they are
// reported as RenderFailed outcomes and combined into returned error.
func (a *Adapter) Apply(ctx context.Context, src Source, targets []Target) ([]Outcome, error) {
	if src.Logo == nil || src.Region.AspectRatio <= 0 {
		return nil, errors.New("source customization is incomplete")
	}
	for _, t := range targets {
		if err := t.Product.CheckCustomizable(); err != nil {
			return nil, err
		}
	}

	outcomes := make([]Outcome, len(targets))

	g := new(errgroup.Group)
	g.SetLimit(a.cfg.Concurrency)
	for i, t := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = a.applyOne(ctx, src, t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var errs error
	for _, o := range outcomes {
		if f, ok := o.(RenderFailed); ok {
			errs = multierr.Append(errs, fmt.Errorf("product %q: %w", f.ProductID, f.Err))
		}
	}
	return outcomes, errs
}

func (a *Adapter) applyOne(ctx context.Context, src Source, t Target) Outcome {
	id := t.Product.ID
	target := t.Product.PrintArea.AspectRatio()
	diff := geometry.AspectDiff(src.Region.AspectRatio, target)

	if !geometry.WithinTolerance(diff, a.cfg.AspectTolerance) {
		a.log.Debug("Manual crop required", zap.String("product", id), zap.Float64("aspect_diff", diff))
		return NeedsManualCrop{ProductID: id, AspectDiff: diff, TargetAspect: target}
	}

	region := crop.Transplant(src.Region, geometry.SizeOf(src.Logo.Bounds()), target)
	if err := region.Check(a.crop.MinSize); err != nil {
		a.log.Debug("Transplanted crop is unusable, manual crop required", zap.String("product", id), zap.Error(err))
		return NeedsManualCrop{ProductID: id, AspectDiff: diff, TargetAspect: target}
	}

	cut := crop.Cut(src.Logo, region)
	comp, err := a.renderer.Render(ctx, render.Request{Photo: t.Photo, Logo: render.FromImage(cut), Area: *t.Product.PrintArea})
	if err != nil {
		a.log.Warn("Unable to render product preview", zap.String("product", id), zap.Error(err))
		return RenderFailed{ProductID: id, Region: region, Err: err}
	}
	cropped, err := a.encode(cut)
	if err != nil {
		return RenderFailed{ProductID: id, Region: region, Err: err}
	}
	return AutoApplied{ProductID: id, AspectDiff: diff, Region: region, Cropped: cropped, Composite: comp}
}

// CompleteManualCrop renders target with crop user confirmed for it.
func (a *Adapter) CompleteManualCrop(ctx context.Context, t Target, c crop.Confirmed) (ManuallyApplied, error) {
	if err := t.Product.CheckCustomizable(); err != nil {
		return ManuallyApplied{}, err
	}
	comp, err := a.renderer.Render(ctx, render.Request{Photo: t.Photo, Logo: render.FromImage(c.Image), Area: *t.Product.PrintArea})
	if err != nil {
		return ManuallyApplied{}, err
	}
	return ManuallyApplied{ProductID: t.Product.ID, Region: c.Region, Cropped: c.DataURI, Composite: comp}, nil
}

func (a *Adapter) encode(img image.Image) (string, error) {
	data, err := images.Encode(img, a.preview.Format, a.preview.JPEGQuality)
	if err != nil {
		return "", fmt.Errorf("unable to encode cropped logo: %w", err)
	}
	return images.DataURI(a.preview.Format.MimeType(), data), nil
}
