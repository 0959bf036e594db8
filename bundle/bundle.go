// Package bundle aggregates per-product customizations into a named bundle
// checked out as one unit.
package bundle

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"logoprev/common"
	"logoprev/config"
	"logoprev/crop"
	"logoprev/render"
)

// Candidate is customization offered for inclusion. Region and Composite are
// nil when customization is not finished.
type Candidate struct {
	ProductID string
	Region    *crop.Region
	Cropped   string
	Composite *render.Composite
	UnitPrice decimal.Decimal
	// Quantity zero means minimal allowed quantity.
	Quantity int
}

type Item struct {
	ProductID string
	Region    crop.Region
	Cropped   string
	Composite *render.Composite
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal is unit price times quantity.
func (it Item) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Bundle always holds between configured minimum and maximum items. It
// could only be created by Assemble.
type Bundle struct {
	cfg   *config.BundleConfig
	name  string
	items []Item
}

// Assemble validates name and candidates and builds bundle. Nothing is
// created if any candidate is rejected.
func Assemble(name string, candidates []Candidate, cfg *config.BundleConfig) (*Bundle, error) {
	b := &Bundle{cfg: cfg}

	var err error
	if b.name, err = b.checkName(name); err != nil {
		return nil, err
	}
	if len(candidates) < cfg.MinItems {
		return nil, common.NewError(common.CodeBundleEmpty, "items", "bundle needs at least %d item(s)", cfg.MinItems)
	}
	if len(candidates) > cfg.MaxItems {
		return nil, common.NewError(common.CodeBundleFull, "items", "bundle could hold at most %d items, got %d", cfg.MaxItems, len(candidates))
	}
	for _, c := range candidates {
		if err := b.add(c); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Bundle) Name() string {
	return b.name
}

func (b *Bundle) Len() int {
	return len(b.items)
}

// Items returns copy of bundle content.
func (b *Bundle) Items() []Item {
	return slices.Clone(b.items)
}

// Item looks up item by product.
func (b *Bundle) Item(productID string) (Item, bool) {
	if i := b.index(productID); i >= 0 {
		return b.items[i], true
	}
	return Item{}, false
}

// Add appends customization to the bundle.
func (b *Bundle) Add(c Candidate) error {
	if len(b.items) >= b.cfg.MaxItems {
		return common.NewError(common.CodeBundleFull, "items", "bundle already holds %d items", len(b.items))
	}
	return b.add(c)
}

func (b *Bundle) add(c Candidate) error {
	if c.Region == nil || c.Composite == nil {
		return common.NewError(common.CodeIncompleteCustomization, "items", "product %q has no finished customization", c.ProductID)
	}
	if b.index(c.ProductID) >= 0 {
		return fmt.Errorf("product %q is already in bundle", c.ProductID)
	}
	q := c.Quantity
	if q == 0 {
		q = b.cfg.MinQuantity
	}
	if err := b.checkQuantity(q); err != nil {
		return err
	}
	if c.UnitPrice.IsNegative() {
		return fmt.Errorf("product %q has negative price %s", c.ProductID, c.UnitPrice)
	}

	b.items = append(b.items, Item{
		ProductID: c.ProductID,
		Region:    *c.Region,
		Cropped:   c.Cropped,
		Composite: c.Composite,
		Quantity:  q,
		UnitPrice: c.UnitPrice,
	})
	return nil
}

// Remove drops product from bundle, last item could not be removed.
func (b *Bundle) Remove(productID string) error {
	i := b.index(productID)
	if i < 0 {
		return common.NewError(common.CodeProductNotFound, "productId", "product %q is not in bundle", productID)
	}
	if len(b.items) <= b.cfg.MinItems {
		return common.NewError(common.CodeBundleEmpty, "items", "bundle must keep at least %d item(s)", b.cfg.MinItems)
	}
	b.items = slices.Delete(b.items, i, i+1)
	return nil
}

// UpdateQuantity changes quantity, out of range values are rejected as a
// whole.
func (b *Bundle) UpdateQuantity(productID string, quantity int) error {
	i := b.index(productID)
	if i < 0 {
		return common.NewError(common.CodeProductNotFound, "productId", "product %q is not in bundle", productID)
	}
	if err := b.checkQuantity(quantity); err != nil {
		return err
	}
	b.items[i].Quantity = quantity
	return nil
}

func (b *Bundle) Rename(name string) error {
	n, err := b.checkName(name)
	if err != nil {
		return err
	}
	b.name = n
	return nil
}

// Total is sum of item subtotals.
func (b *Bundle) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range b.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Quantity is total number of units across items.
func (b *Bundle) Quantity() int {
	n := 0
	for _, it := range b.items {
		n += it.Quantity
	}
	return n
}

func (b *Bundle) index(productID string) int {
	return slices.IndexFunc(b.items, func(it Item) bool { return it.ProductID == productID })
}

func (b *Bundle) checkQuantity(q int) error {
	if q < b.cfg.MinQuantity || q > b.cfg.MaxQuantity {
		return common.NewError(common.CodeInvalidQuantity, "quantity",
			"quantity %d is outside of [%d, %d]", q, b.cfg.MinQuantity, b.cfg.MaxQuantity)
	}
	return nil
}

// checkName normalizes name and checks its length in characters.
func (b *Bundle) checkName(name string) (string, error) {
	n := strings.TrimSpace(norm.NFC.String(name))
	if l := utf8.RuneCountInString(n); l < b.cfg.MinNameLength || l > b.cfg.MaxNameLength {
		return "", common.NewError(common.CodeInvalidBundleName, "bundleName",
			"name has %d characters, allowed %d to %d", l, b.cfg.MinNameLength, b.cfg.MaxNameLength)
	}
	return n, nil
}
