package session

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"logoprev/catalog"
	"logoprev/common"
	"logoprev/crop"
	"logoprev/multiproduct"
	"logoprev/render"
	"logoprev/utils/images"
)

// ApplyToProducts replicates confirmed crop of current product onto
// additional products, current product itself is skipped. Previous set of
// additional products is replaced. Outcomes are returned in products order,
// error combines individual render failures, outcomes are kept regardless.
func (s *Session) ApplyToProducts(ctx context.Context, products []*catalog.ProductDetail) ([]multiproduct.Outcome, error) {
	s.mu.Lock()
	if err := s.requireLogoLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.product == nil {
		s.mu.Unlock()
		return nil, ErrNoProduct
	}
	c, err := s.confirmedLocked(s.product.ID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	full, err := s.logo.Image(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	current := s.product.ID
	s.mu.Unlock()

	// photos are read outside of the lock, reading could be slow
	targets := make([]*target, 0, len(products))
	for _, p := range products {
		if p.ID == current || slices.ContainsFunc(targets, func(t *target) bool { return t.product.ID == p.ID }) {
			continue
		}
		if err := p.CheckCustomizable(); err != nil {
			return nil, err
		}
		photo, err := s.photos.ReadPhoto(p)
		if err != nil {
			return nil, err
		}
		targets = append(targets, &target{product: p, photo: photo})
	}

	mt := make([]multiproduct.Target, len(targets))
	for i, t := range targets {
		mt[i] = multiproduct.Target{Product: t.product, Photo: render.FromBytes(t.photo)}
	}
	outcomes, applyErr := s.adapter.Apply(ctx, multiproduct.Source{Logo: full, Region: c.Region}, mt)
	if outcomes == nil {
		return nil, applyErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// crop of current product changed while we were rendering
	if now, err := s.confirmedLocked(current); err != nil || now.Region != c.Region || s.product == nil || s.product.ID != current {
		return nil, ErrSuperseded
	}
	for i, t := range targets {
		t.outcome = outcomes[i]
		// manual crops made for previous targets are not reused
		delete(s.crops, t.product.ID)
	}
	s.targets = targets
	s.bundle = nil
	s.log.Debug("Customization replicated", zap.Int("products", len(targets)), zap.Error(applyErr))
	return outcomes, applyErr
}

// Applications returns current outcomes for additional products.
func (s *Session) Applications() []multiproduct.Application {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]multiproduct.Application, 0, len(s.targets))
	for _, t := range s.targets {
		res = append(res, multiproduct.ApplicationOf(t.outcome))
	}
	return res
}

// ManualCrop returns crop engine constrained to aspect ratio of additional
// product. Engine must not be used concurrently with other session calls.
func (s *Session) ManualCrop(ctx context.Context, productID string) (*crop.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.targetLocked(productID) == nil {
		return nil, common.NewError(common.CodeProductNotFound, "productId", "customization was not applied to product %q", productID)
	}
	return s.engineLocked(ctx, productID)
}

// CompleteManualCrop renders additional product with crop confirmed on
// engine returned by ManualCrop.
func (s *Session) CompleteManualCrop(ctx context.Context, productID string) (multiproduct.ManuallyApplied, error) {
	s.mu.Lock()
	t := s.targetLocked(productID)
	if t == nil {
		s.mu.Unlock()
		return multiproduct.ManuallyApplied{}, common.NewError(common.CodeProductNotFound, "productId", "customization was not applied to product %q", productID)
	}
	c, err := s.confirmedLocked(productID)
	if err != nil {
		s.mu.Unlock()
		return multiproduct.ManuallyApplied{}, err
	}
	mt := multiproduct.Target{Product: t.product, Photo: render.FromBytes(t.photo)}
	s.mu.Unlock()

	res, err := s.adapter.CompleteManualCrop(ctx, mt, c)
	if err != nil {
		return multiproduct.ManuallyApplied{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.targetLocked(productID) != t {
		return multiproduct.ManuallyApplied{}, ErrSuperseded
	}
	if now, err := s.confirmedLocked(productID); err != nil || now.Region != c.Region {
		return multiproduct.ManuallyApplied{}, ErrSuperseded
	}
	t.outcome = res
	if s.bundle != nil {
		if _, ok := s.bundle.Item(productID); ok {
			s.bundle = nil
		}
	}
	return res, nil
}

// applied is multiproduct.Applied tolerating missing outcome.
func applied(o multiproduct.Outcome) (crop.Region, *render.Composite, string, bool) {
	if o == nil {
		return crop.Region{}, nil, "", false
	}
	return multiproduct.Applied(o)
}

// croppedSource turns cropped logo data URI back into render source.
func croppedSource(uri string) (render.Source, error) {
	_, data, err := images.ParseDataURI(uri)
	if err != nil {
		return render.Source{}, fmt.Errorf("unable to decode cropped logo: %w", err)
	}
	return render.FromBytes(data), nil
}
