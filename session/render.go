package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"logoprev/common"
	"logoprev/crop"
	"logoprev/quality"
	"logoprev/render"
)

// Render draws preview of current product with confirmed crop. Only the
// latest request may publish its result: when inputs change or another
// render is started meanwhile ErrSuperseded is returned and result is
// dropped. On failure previously rendered composite is kept.
func (s *Session) Render(ctx context.Context) (*render.Composite, error) {
	s.mu.Lock()
	req, err := s.renderRequestLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	comp, err := s.draw(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.log.Debug("Stale render result dropped", zap.Uint64("generation", gen), zap.Uint64("current", s.generation))
		return nil, ErrSuperseded
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			s.renderErr = err
		}
		return nil, err
	}
	s.composite = comp
	s.renderErr = nil
	return comp, nil
}

func (s *Session) renderRequestLocked() (render.Request, error) {
	if err := s.requireLogoLocked(); err != nil {
		return render.Request{}, err
	}
	if s.product == nil {
		return render.Request{}, ErrNoProduct
	}
	c, err := s.confirmedLocked(s.product.ID)
	if err != nil {
		return render.Request{}, err
	}
	return render.Request{
		Photo: render.FromBytes(s.photo),
		Logo:  render.FromImage(c.Image),
		Area:  *s.product.PrintArea,
	}, nil
}

// confirmedLocked returns confirmed crop of product.
func (s *Session) confirmedLocked(productID string) (crop.Confirmed, error) {
	if e, ok := s.crops[productID]; ok {
		if c, ok := e.State().(crop.Confirmed); ok {
			return c, nil
		}
	}
	return crop.Confirmed{}, common.NewError(common.CodeNoCrop, "cropData", "crop for product %q is not confirmed", productID)
}

// Composite returns last successfully rendered preview of current product
// and error of the most recent failed render if there was one after it.
func (s *Session) Composite() (*render.Composite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composite, s.renderErr
}

// Validate checks whether current customization could be added to cart.
func (s *Session) Validate() quality.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	var in quality.Input
	if s.logo != nil && !s.logo.Released() {
		in.Logo = &quality.Logo{Width: s.logo.Width, Height: s.logo.Height, Vector: s.logo.Kind.IsVector()}
	}
	if s.product != nil {
		in.Area = s.product.PrintArea
		if c, err := s.confirmedLocked(s.product.ID); err == nil {
			r := c.Region
			in.Crop = &r
		}
	}
	in.HasPreview = s.composite != nil
	return quality.Validate(in, quality.ThresholdsFrom(&s.cfg.Quality, &s.cfg.Crop))
}

// Download produces watermarked artifact for current product or any product
// customization was applied to.
func (s *Session) Download(ctx context.Context, productID string, at time.Time) (*render.Artifact, error) {
	s.mu.Lock()
	req, name, err := s.downloadRequestLocked(productID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.renderer.Download(ctx, req, productID, name, at)
}

func (s *Session) downloadRequestLocked(productID string) (render.Request, string, error) {
	if err := s.requireLogoLocked(); err != nil {
		return render.Request{}, "", err
	}
	if s.product != nil && s.product.ID == productID {
		if s.composite == nil {
			return render.Request{}, "", common.NewError(common.CodeNoPreview, "preview", "preview for product %q is not rendered", productID)
		}
		c, err := s.confirmedLocked(productID)
		if err != nil {
			return render.Request{}, "", err
		}
		return render.Request{
			Photo: render.FromBytes(s.photo),
			Logo:  render.FromImage(c.Image),
			Area:  *s.product.PrintArea,
		}, s.product.Name, nil
	}

	t := s.targetLocked(productID)
	if t == nil {
		return render.Request{}, "", common.NewError(common.CodeProductNotFound, "productId", "product %q is not part of customization", productID)
	}
	_, comp, cropped, ok := applied(t.outcome)
	if !ok || comp == nil {
		return render.Request{}, "", common.NewError(common.CodeNoPreview, "preview", "preview for product %q is not rendered", productID)
	}
	logo, err := croppedSource(cropped)
	if err != nil {
		return render.Request{}, "", err
	}
	return render.Request{
		Photo: render.FromBytes(t.photo),
		Logo:  logo,
		Area:  *t.product.PrintArea,
	}, t.product.Name, nil
}
