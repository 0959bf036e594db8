package session

import (
	"context"
	"fmt"

	"logoprev/bundle"
	"logoprev/common"
	"logoprev/crop"
	"logoprev/multiproduct"
	"logoprev/render"
	"logoprev/store"
	"logoprev/utils/debug"
)

// Selection picks product for bundle, zero quantity means minimal one.
type Selection struct {
	ProductID string
	Quantity  int
}

// SaveResult maps product identifiers to saved draft identifiers. BundleID
// is empty when there was no bundle.
type SaveResult struct {
	Drafts   map[string]string
	BundleID string
}

// AssembleBundle builds bundle out of current product and products
// customization was applied to. Empty selection takes all of them with
// minimal quantities. Previous bundle is replaced only on success.
func (s *Session) AssembleBundle(name string, selection []Selection) (*bundle.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(selection) == 0 {
		if s.product != nil {
			selection = append(selection, Selection{ProductID: s.product.ID})
		}
		for _, t := range s.targets {
			selection = append(selection, Selection{ProductID: t.product.ID})
		}
	}

	candidates := make([]bundle.Candidate, 0, len(selection))
	for _, sel := range selection {
		c, err := s.candidateLocked(sel.ProductID)
		if err != nil {
			return nil, err
		}
		c.Quantity = sel.Quantity
		candidates = append(candidates, c)
	}

	b, err := bundle.Assemble(name, candidates, &s.cfg.Bundle)
	if err != nil {
		return nil, err
	}
	s.bundle = b
	return b, nil
}

func (s *Session) candidateLocked(productID string) (bundle.Candidate, error) {
	p, _, err := s.productLocked(productID)
	if err != nil {
		return bundle.Candidate{}, err
	}
	c := bundle.Candidate{ProductID: p.ID, UnitPrice: p.Price}
	region, comp, cropped, ok := s.customizationLocked(productID)
	if ok {
		c.Region, c.Composite, c.Cropped = &region, comp, cropped
	}
	return c, nil
}

// customizationLocked returns finished customization of product.
func (s *Session) customizationLocked(productID string) (crop.Region, *render.Composite, string, bool) {
	if s.product != nil && s.product.ID == productID {
		c, err := s.confirmedLocked(productID)
		if err != nil || s.composite == nil {
			return crop.Region{}, nil, "", false
		}
		return c.Region, s.composite, c.DataURI, true
	}
	if t := s.targetLocked(productID); t != nil {
		return applied(t.outcome)
	}
	return crop.Region{}, nil, "", false
}

// Bundle returns assembled bundle, nil if there is none.
func (s *Session) Bundle() *bundle.Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundle
}

// UpdateQuantity changes quantity of bundle item.
func (s *Session) UpdateQuantity(productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bundle == nil {
		return common.NewError(common.CodeBundleEmpty, "items", "no bundle was assembled")
	}
	return s.bundle.UpdateQuantity(productID, quantity)
}

// RemoveItem drops product from bundle, last item cannot be removed.
func (s *Session) RemoveItem(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bundle == nil {
		return common.NewError(common.CodeBundleEmpty, "items", "no bundle was assembled")
	}
	return s.bundle.Remove(productID)
}

// DraftRequest prepares draft of finished customization of product.
func (s *Session) DraftRequest(productID string) (store.DraftRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draftRequestLocked(productID)
}

func (s *Session) draftRequestLocked(productID string) (store.DraftRequest, error) {
	if err := s.requireLogoLocked(); err != nil {
		return store.DraftRequest{}, err
	}
	if _, _, err := s.productLocked(productID); err != nil {
		return store.DraftRequest{}, err
	}
	region, comp, cropped, ok := s.customizationLocked(productID)
	if !ok {
		return store.DraftRequest{}, common.NewError(common.CodeIncompleteCustomization, "productId", "customization of product %q is not finished", productID)
	}

	req := store.DraftRequest{
		ProductID:       productID,
		LogoFileURL:     s.logo.PreviewURI(),
		LogoFileName:    s.logo.FileName,
		LogoFileSize:    s.logo.ByteSize,
		CropData:        region,
		CroppedImageURL: cropped,
		PreviewImageURL: comp.DataURI,
	}
	if d := s.logo.Dimensions(); d != nil {
		req.LogoDimensions = &store.Dimensions{Width: d.X, Height: d.Y}
	}
	return req, nil
}

// Save stores drafts of every bundle item and then bundle itself. Without
// bundle only current product is saved.
func (s *Session) Save(ctx context.Context, c Collaborator) (SaveResult, error) {
	s.mu.Lock()
	var (
		drafts []store.DraftRequest
		items  []bundle.Item
		name   string
	)
	if s.bundle != nil {
		name = s.bundle.Name()
		items = s.bundle.Items()
		for _, it := range items {
			req, err := s.draftRequestLocked(it.ProductID)
			if err != nil {
				s.mu.Unlock()
				return SaveResult{}, err
			}
			req.BundleName = name
			drafts = append(drafts, req)
		}
	} else {
		if s.product == nil {
			s.mu.Unlock()
			return SaveResult{}, ErrNoProduct
		}
		req, err := s.draftRequestLocked(s.product.ID)
		if err != nil {
			s.mu.Unlock()
			return SaveResult{}, err
		}
		drafts = append(drafts, req)
	}
	s.mu.Unlock()

	res := SaveResult{Drafts: make(map[string]string, len(drafts))}
	for _, req := range drafts {
		resp, err := c.SaveDraft(ctx, req)
		if err != nil {
			return res, fmt.Errorf("unable to save draft for product %q: %w", req.ProductID, err)
		}
		res.Drafts[req.ProductID] = resp.DraftID
	}
	if len(items) == 0 {
		return res, nil
	}

	breq := store.BundleRequest{BundleName: name, Items: make([]store.BundleItemRequest, 0, len(items))}
	for _, it := range items {
		breq.Items = append(breq.Items, store.BundleItemRequest{
			ProductID:       it.ProductID,
			CustomizationID: res.Drafts[it.ProductID],
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
		})
	}
	resp, err := c.CreateBundle(ctx, breq)
	if err != nil {
		return res, fmt.Errorf("unable to save bundle: %w", err)
	}
	res.BundleID = resp.BundleID
	return res, nil
}

// Dump returns human readable session state for debug report.
func (s *Session) Dump() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tw := debug.NewTreeWriter()
	tw.Line(0, "session (generation %d)", s.generation)
	if s.logo != nil {
		tw.Line(1, "logo %s", s.logo.ID)
		tw.TextBlock(2, "file", s.logo.FileName)
		tw.Value(2, "kind", s.logo.Kind)
		tw.Value(2, "size", s.logo.ByteSize)
		if d := s.logo.Dimensions(); d != nil {
			tw.Line(2, "dimensions: %dx%d", d.X, d.Y)
		}
		for _, w := range s.logo.Warnings() {
			tw.Value(2, "warning", w)
		}
	}
	if s.product != nil {
		tw.Line(1, "product %s", s.product.ID)
		tw.TextBlock(2, "name", s.product.Name)
		tw.Value(2, "aspect", s.product.PrintArea.AspectRatio())
		if e, ok := s.crops[s.product.ID]; ok {
			tw.Value(2, "crop", e.State())
			if r, ok := e.Region(); ok {
				tw.Value(2, "region", r.Rect())
			}
		}
		if s.composite != nil {
			tw.Value(2, "rendered", s.composite.RenderedAt.Format("2006-01-02 15:04:05.000"))
			tw.Value(2, "duration", s.composite.Duration)
			tw.Value(2, "logo placement", s.composite.LogoRect)
		}
		if s.renderErr != nil {
			tw.Value(2, "render error", s.renderErr)
		}
	}
	for _, t := range s.targets {
		tw.Line(1, "additional product %s", t.product.ID)
		a := multiproduct.ApplicationOf(t.outcome)
		tw.Value(2, "applied", a.IsApplied)
		tw.Value(2, "needs manual crop", a.NeedsManualCrop)
		if a.CropRegion != nil {
			tw.Value(2, "region", a.CropRegion.Rect())
		}
	}
	if s.bundle != nil {
		tw.Line(1, "bundle")
		tw.TextBlock(2, "name", s.bundle.Name())
		for _, it := range s.bundle.Items() {
			tw.Line(2, "%s x%d @ %s = %s", it.ProductID, it.Quantity, it.UnitPrice.StringFixed(2), it.Subtotal().StringFixed(2))
		}
		tw.Value(2, "total", s.bundle.Total().StringFixed(2))
	}
	return tw.String()
}
