package session

import (
	"context"

	"logoprev/crop"
)

// engineLocked returns crop engine for product creating it on first use.
func (s *Session) engineLocked(ctx context.Context, productID string) (*crop.Engine, error) {
	if err := s.requireLogoLocked(); err != nil {
		return nil, err
	}
	if e, ok := s.crops[productID]; ok {
		return e, nil
	}
	p, _, err := s.productLocked(productID)
	if err != nil {
		return nil, err
	}
	img, err := s.logo.Image(ctx)
	if err != nil {
		return nil, err
	}
	e, err := crop.New(img, p.PrintArea.AspectRatio(), &s.cfg.Crop, &s.cfg.Preview, s.log)
	if err != nil {
		return nil, err
	}
	s.crops[productID] = e
	return e, nil
}

func (s *Session) currentEngineLocked(ctx context.Context) (*crop.Engine, error) {
	if s.product == nil {
		return nil, ErrNoProduct
	}
	return s.engineLocked(ctx, s.product.ID)
}

// CropState returns state of crop for current product.
func (s *Session) CropState(ctx context.Context) (crop.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.currentEngineLocked(ctx)
	if err != nil {
		return nil, err
	}
	return e.State(), nil
}

// Pan moves crop frame of current product.
func (s *Session) Pan(ctx context.Context, dx, dy float64) (crop.View, error) {
	return s.adjust(ctx, func(e *crop.Engine) (crop.View, error) { return e.Pan(dx, dy) })
}

// MoveTo places crop frame of current product.
func (s *Session) MoveTo(ctx context.Context, panX, panY float64) (crop.View, error) {
	return s.adjust(ctx, func(e *crop.Engine) (crop.View, error) { return e.MoveTo(panX, panY) })
}

// Zoom changes crop zoom of current product.
func (s *Session) Zoom(ctx context.Context, zoom float64) (crop.View, error) {
	return s.adjust(ctx, func(e *crop.Engine) (crop.View, error) { return e.Zoom(zoom) })
}

func (s *Session) adjust(ctx context.Context, op func(*crop.Engine) (crop.View, error)) (crop.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.currentEngineLocked(ctx)
	if err != nil {
		return crop.View{}, err
	}
	return op(e)
}

// ConfirmCrop accepts crop of current product. Preview has to be rendered
// again after that.
func (s *Session) ConfirmCrop(ctx context.Context) (crop.Confirmed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.currentEngineLocked(ctx)
	if err != nil {
		return crop.Confirmed{}, err
	}
	prev, had := e.Region()
	c, err := e.Confirm()
	if err != nil {
		return crop.Confirmed{}, err
	}
	if !had || prev != c.Region {
		s.discardLocked()
	}
	return c, nil
}

// Recrop reopens confirmed crop of current product for adjustments.
func (s *Session) Recrop(ctx context.Context) (crop.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.currentEngineLocked(ctx)
	if err != nil {
		return crop.View{}, err
	}
	v := e.Recrop()
	s.discardLocked()
	return v, nil
}

// ResetCrop discards crop of current product.
func (s *Session) ResetCrop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.currentEngineLocked(ctx)
	if err != nil {
		return err
	}
	e.Reset()
	s.discardLocked()
	return nil
}
