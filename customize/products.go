package customize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"logoprev/catalog"
	"logoprev/state"
)

// Products lists catalog products ordered by identifier.
func Products(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	path := cmd.Args().Get(0)
	if len(path) == 0 {
		return errors.New("no product catalog has been specified")
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}
	env.Log.Debug("Catalog loaded", zap.String("catalog", path), zap.Int("products", len(cat.Products)))
	return listProducts(os.Stdout, cat)
}

func listProducts(w io.Writer, cat *catalog.Catalog) error {
	byID := make(map[string]*catalog.ProductDetail, len(cat.Products))
	ids := make([]string, 0, len(cat.Products))
	for i := range cat.Products {
		p := &cat.Products[i]
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	sort.Sort(natural.StringSlice(ids))

	for _, id := range ids {
		p := byID[id]
		mark, area := " ", "-"
		if p.CheckCustomizable() == nil {
			mark = "*"
			area = fmt.Sprintf("%gx%g px, %gx%g cm, aspect %.3f",
				p.PrintArea.PixelWidth, p.PrintArea.PixelHeight,
				p.PrintArea.PhysicalWidthCm, p.PrintArea.PhysicalHeightCm,
				p.PrintArea.AspectRatio())
		}
		if _, err := fmt.Fprintf(w, "%s %-16s %-32s %10s  %s\n", mark, p.ID, p.Name, p.Price.StringFixed(2), area); err != nil {
			return err
		}
	}
	return nil
}
