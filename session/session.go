// Package session keeps state of a single customization: current logo, the
// product it is placed on, per product crops, rendered previews, products
// customization was replicated to and assembled bundle.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"logoprev/bundle"
	"logoprev/catalog"
	"logoprev/common"
	"logoprev/config"
	"logoprev/crop"
	"logoprev/logo"
	"logoprev/multiproduct"
	"logoprev/render"
	"logoprev/store"
)

// ErrSuperseded is returned when result of asynchronous operation was
// discarded because newer request has been made meanwhile.
var ErrSuperseded = errors.New("result superseded by newer request")

// ErrNoProduct is returned by crop and render operations before product is
// selected.
var ErrNoProduct = errors.New("no product selected")

// PhotoReader supplies encoded base product photos.
type PhotoReader interface {
	ReadPhoto(p *catalog.ProductDetail) ([]byte, error)
}

// Collaborator persists drafts and bundles.
type Collaborator interface {
	SaveDraft(ctx context.Context, req store.DraftRequest) (store.DraftResponse, error)
	CreateBundle(ctx context.Context, req store.BundleRequest) (store.BundleResponse, error)
}

// target is additional product customization was replicated to.
type target struct {
	product *catalog.ProductDetail
	photo   []byte
	outcome multiproduct.Outcome
}

type Session struct {
	cfg      *config.EngineConfig
	log      *zap.Logger
	photos   PhotoReader
	ingestor *logo.Ingestor
	renderer *render.Renderer
	adapter  *multiproduct.Adapter
	draw     func(context.Context, render.Request) (*render.Composite, error)

	mu sync.Mutex
	// generation increases every time current preview inputs change or new
	// render is requested, render results of older generations are dropped
	generation uint64
	logo       *logo.Asset
	product    *catalog.ProductDetail
	photo      []byte
	crops      map[string]*crop.Engine
	composite  *render.Composite
	renderErr  error
	targets    []*target
	bundle     *bundle.Bundle
}

func New(cfg *config.EngineConfig, photos PhotoReader, log *zap.Logger) (*Session, error) {
	log = log.Named("session")
	renderer, err := render.NewRenderer(&cfg.Preview, &cfg.Download, log)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare renderer: %w", err)
	}
	return &Session{
		cfg:      cfg,
		log:      log,
		photos:   photos,
		ingestor: logo.NewIngestor(&cfg.Ingest, log),
		renderer: renderer,
		adapter:  multiproduct.NewAdapter(cfg, renderer, log),
		draw:     renderer.Render,
		crops:    make(map[string]*crop.Engine),
	}, nil
}

// SetLogo ingests logo replacing previous one. Everything derived from
// previous logo is discarded.
func (s *Session) SetLogo(ctx context.Context, name string, r io.Reader) (*logo.Asset, error) {
	a, err := s.ingestor.Ingest(ctx, name, r)
	if err != nil {
		return nil, err
	}
	s.replaceLogo(a)
	return a, nil
}

// SetLogoFile is SetLogo reading from file.
func (s *Session) SetLogoFile(ctx context.Context, path string) (*logo.Asset, error) {
	a, err := s.ingestor.IngestFile(ctx, path)
	if err != nil {
		return nil, err
	}
	s.replaceLogo(a)
	return a, nil
}

func (s *Session) replaceLogo(a *logo.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.logo != nil {
		s.log.Debug("Logo replaced", zap.Stringer("old", s.logo.ID), zap.Stringer("new", a.ID))
		s.logo.Release()
	}
	s.logo = a
	s.crops = make(map[string]*crop.Engine)
	s.discardLocked()
}

// Logo returns current logo, nil if none.
func (s *Session) Logo() *logo.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logo
}

// SelectProduct makes product current. Its photo is read immediately,
// products customization was replicated to are forgotten.
func (s *Session) SelectProduct(p *catalog.ProductDetail) error {
	if err := p.CheckCustomizable(); err != nil {
		return err
	}
	photo, err := s.photos.ReadPhoto(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.product = p
	s.photo = photo
	s.discardLocked()
	return nil
}

// Product returns current product, nil if none.
func (s *Session) Product() *catalog.ProductDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.product
}

// invalidateLocked drops current preview and makes in-flight renders stale.
func (s *Session) invalidateLocked() {
	s.generation++
	s.composite = nil
	s.renderErr = nil
}

// discardLocked drops preview together with everything derived from it:
// additional products and bundle assembled out of them.
func (s *Session) discardLocked() {
	s.targets = nil
	s.bundle = nil
	s.invalidateLocked()
}

// Close releases logo and everything derived from it.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.logo != nil {
		s.logo.Release()
		s.log.Debug("Logo released", zap.Stringer("id", s.logo.ID))
	}
	s.logo = nil
	s.product = nil
	s.photo = nil
	s.crops = make(map[string]*crop.Engine)
	s.discardLocked()
}

func (s *Session) requireLogoLocked() error {
	if s.logo == nil || s.logo.Released() {
		return common.NewError(common.CodeNoLogo, "logo", "no logo uploaded")
	}
	return nil
}

// productLocked finds current product or target by id.
func (s *Session) productLocked(id string) (*catalog.ProductDetail, []byte, error) {
	if s.product != nil && s.product.ID == id {
		return s.product, s.photo, nil
	}
	if t := s.targetLocked(id); t != nil {
		return t.product, t.photo, nil
	}
	return nil, nil, common.NewError(common.CodeProductNotFound, "productId", "product %q is not part of customization", id)
}

func (s *Session) targetLocked(id string) *target {
	for _, t := range s.targets {
		if t.product.ID == id {
			return t
		}
	}
	return nil
}
