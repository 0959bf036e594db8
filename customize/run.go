// Package customize drives customization session from command line: places
// logo on selected product, replicates it to additional products and writes
// resulting previews and download artifacts.
package customize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"logoprev/catalog"
	"logoprev/multiproduct"
	"logoprev/session"
	"logoprev/state"
	"logoprev/store"
	"logoprev/utils/images"
)

// options collects everything customization needs from command line.
type options struct {
	catalog  string
	dst      string
	logo     string
	product  string
	zoom     float64
	panX     float64
	panY     float64
	also     []string
	bundle   string
	quantity map[string]int
	download bool
	save     bool
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("customize")

	opts := options{
		logo:     cmd.String("logo"),
		product:  cmd.String("product"),
		zoom:     cmd.Float("zoom"),
		panX:     cmd.Float("pan-x"),
		panY:     cmd.Float("pan-y"),
		also:     cmd.StringSlice("also"),
		bundle:   cmd.String("bundle"),
		download: cmd.Bool("download"),
		save:     cmd.Bool("save"),
	}

	if opts.catalog = cmd.Args().Get(0); len(opts.catalog) == 0 {
		return errors.New("no product catalog has been specified")
	}
	if len(opts.logo) == 0 {
		return errors.New("no logo file has been specified")
	}
	if len(opts.product) == 0 {
		return errors.New("no product has been specified")
	}

	opts.dst = cmd.Args().Get(1)
	if len(opts.dst) == 0 {
		if opts.dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if opts.dst, err = filepath.Abs(opts.dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if opts.quantity, err = parseQuantities(cmd.StringSlice("quantity")); err != nil {
		return err
	}

	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Customization starting", zap.String("catalog", opts.catalog), zap.String("logo", opts.logo), zap.String("destination", opts.dst))
	defer func(start time.Time) {
		log.Info("Customization completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, opts, log)
}

// parseQuantities parses "product=quantity" pairs.
func parseQuantities(pairs []string) (map[string]int, error) {
	res := make(map[string]int, len(pairs))
	for _, p := range pairs {
		id, q, ok := strings.Cut(p, "=")
		if !ok || len(strings.TrimSpace(id)) == 0 {
			return nil, fmt.Errorf("malformed quantity %q, expected PRODUCT=QUANTITY", p)
		}
		n, err := strconv.Atoi(strings.TrimSpace(q))
		if err != nil {
			return nil, fmt.Errorf("malformed quantity %q: %w", p, err)
		}
		res[strings.TrimSpace(id)] = n
	}
	return res, nil
}

// process handles customization independently of CLI framework.
func process(ctx context.Context, opts options, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	if env.Rpt != nil {
		for _, in := range []string{opts.catalog, opts.logo} {
			if err := env.Rpt.StoreCopy("input/"+filepath.Base(in), in); err != nil {
				log.Warn("Unable to store input in debug report", zap.String("file", in), zap.Error(err))
			}
		}
	}

	cat, err := catalog.Load(opts.catalog)
	if err != nil {
		return err
	}
	p, err := cat.Product(opts.product)
	if err != nil {
		return err
	}

	s, err := session.New(&env.Cfg.Engine, cat, env.Log)
	if err != nil {
		return err
	}
	defer s.Close()
	defer func() {
		if env.Rpt != nil {
			env.Rpt.StoreData("session.txt", []byte(s.Dump()))
		}
	}()

	asset, err := s.SetLogoFile(ctx, opts.logo)
	if err != nil {
		return fmt.Errorf("unable to use logo: %w", err)
	}
	for _, w := range asset.Warnings() {
		log.Warn("Logo quality", zap.Stringer("issue", w))
	}

	if err := s.SelectProduct(p); err != nil {
		return err
	}
	if err := placeCrop(ctx, s, opts); err != nil {
		return err
	}
	comp, err := s.Render(ctx)
	if err != nil {
		return err
	}

	res := s.Validate()
	if env.Rpt != nil {
		if data, err := json.MarshalIndent(res, "", "  "); err == nil {
			env.Rpt.StoreData("validation.json", data)
		}
	}
	for _, w := range res.Warnings {
		log.Warn("Print quality", zap.String("product", p.ID), zap.Stringer("issue", w))
	}
	if !res.Valid {
		return fmt.Errorf("customization of %q could not be added to cart: %v", p.ID, res.Errors)
	}

	if err := writePreview(env, opts.dst, p.ID, comp.DataURI); err != nil {
		return err
	}
	done := []string{p.ID}

	if len(opts.also) > 0 {
		ids, err := replicate(ctx, s, cat, opts, log)
		if err != nil {
			return err
		}
		done = append(done, ids...)
	}

	if opts.download {
		at := env.Now()
		for _, id := range done {
			a, err := s.Download(ctx, id, at)
			if err != nil {
				return fmt.Errorf("unable to prepare download for %q: %w", id, err)
			}
			if err := writeFile(opts.dst, a.FileName, a.Data, env.Overwrite); err != nil {
				return err
			}
		}
	}

	if len(opts.bundle) > 0 {
		sel := make([]session.Selection, 0, len(done))
		for _, id := range done {
			sel = append(sel, session.Selection{ProductID: id, Quantity: opts.quantity[id]})
		}
		b, err := s.AssembleBundle(opts.bundle, sel)
		if err != nil {
			return err
		}
		log.Info("Bundle assembled", zap.String("name", b.Name()), zap.Int("items", b.Len()), zap.Int("quantity", b.Quantity()), zap.Stringer("total", b.Total()))
	}

	if opts.save {
		st, err := store.Open(env.Cfg.Storage.Database, env.Log)
		if err != nil {
			return err
		}
		defer st.Close()

		saved, err := s.Save(ctx, st)
		if err != nil {
			return err
		}
		for id, draft := range saved.Drafts {
			log.Info("Draft saved", zap.String("product", id), zap.String("draft", draft))
		}
		if len(saved.BundleID) > 0 {
			log.Info("Bundle saved", zap.String("bundle", saved.BundleID))
		}
	}
	return nil
}

// placeCrop positions and confirms crop of current product.
func placeCrop(ctx context.Context, s *session.Session, opts options) error {
	if opts.zoom > 0 {
		if _, err := s.Zoom(ctx, opts.zoom); err != nil {
			return err
		}
	}
	if opts.panX != 0 || opts.panY != 0 {
		if _, err := s.MoveTo(ctx, opts.panX, opts.panY); err != nil {
			return err
		}
	}
	_, err := s.ConfirmCrop(ctx)
	return err
}

// replicate applies customization to additional products. Products which
// could not reuse crop get centered crop of their own. Identifiers of
// products with previews are returned.
func replicate(ctx context.Context, s *session.Session, cat *catalog.Catalog, opts options, log *zap.Logger) ([]string, error) {
	env := state.EnvFromContext(ctx)

	products := make([]*catalog.ProductDetail, 0, len(opts.also))
	for _, id := range opts.also {
		p, err := cat.Product(id)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	outcomes, err := s.ApplyToProducts(ctx, products)
	if outcomes == nil {
		return nil, err
	}
	if err != nil {
		log.Warn("Some products were not rendered", zap.Error(err))
	}

	var ids []string
	for _, o := range outcomes {
		switch v := o.(type) {
		case multiproduct.NeedsManualCrop:
			log.Warn("Aspect ratio differs too much, using centered crop", zap.String("product", v.ProductID), zap.Float64("aspect_diff", v.AspectDiff))
			e, err := s.ManualCrop(ctx, v.ProductID)
			if err != nil {
				return nil, err
			}
			if _, err := e.Confirm(); err != nil {
				return nil, fmt.Errorf("unable to crop logo for %q: %w", v.ProductID, err)
			}
			if _, err := s.CompleteManualCrop(ctx, v.ProductID); err != nil {
				return nil, err
			}
		case multiproduct.RenderFailed:
			continue
		}
		ids = append(ids, o.Product())
	}

	for _, a := range s.Applications() {
		if !a.IsApplied || a.Composite == nil {
			continue
		}
		if err := writePreview(env, opts.dst, a.ProductID, a.Composite.DataURI); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// writePreview stores rendered preview as "<product>-preview" file.
func writePreview(env *state.LocalEnv, dir, productID, uri string) error {
	_, data, err := images.ParseDataURI(uri)
	if err != nil {
		return fmt.Errorf("unable to decode preview of %q: %w", productID, err)
	}
	return writeFile(dir, productID+"-preview"+env.Cfg.Engine.Preview.Format.Ext(), data, env.Overwrite)
}

func writeFile(dir, name string, data []byte, overwrite bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create destination directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("output file already exists: %s", path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("unable to write output file: %w", err)
	}
	return nil
}
