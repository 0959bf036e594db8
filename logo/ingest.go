// Package logo validates uploaded logo files and turns them into immutable
// in-memory assets.
package logo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"logoprev/common"
	"logoprev/config"
	"logoprev/utils/images"
)

type Ingestor struct {
	cfg *config.IngestConfig
	log *zap.Logger
}

func NewIngestor(cfg *config.IngestConfig, log *zap.Logger) *Ingestor {
	return &Ingestor{cfg: cfg, log: log.Named("logo")}
}

// IngestFile opens file and ingests it. Oversized files are never read
// past the header needed to check their type.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (*Asset, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("unable to access logo file: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("logo %q is not a regular file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open logo file: %w", err)
	}
	defer f.Close()

	if fi.Size() > in.cfg.MaxFileSize {
		head, err := io.ReadAll(io.LimitReader(f, sniffLen))
		if err != nil {
			return nil, fmt.Errorf("unable to read logo: %w", err)
		}
		if _, err := detectKind(head); err != nil {
			return nil, err
		}
		return nil, in.tooLarge(fi.Size())
	}
	return in.Ingest(ctx, filepath.Base(path), f)
}

// Ingest validates logo type and size and decodes raster logos. Result may
// carry warnings, they never prevent ingestion.
func (in *Ingestor) Ingest(ctx context.Context, name string, r io.Reader) (*Asset, error) {
	// read one byte over the limit to detect oversized input without
	// buffering all of it
	data, err := io.ReadAll(io.LimitReader(r, in.cfg.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read logo: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// type is reported before size
	kind, err := detectKind(data)
	if err != nil {
		in.log.Debug("Logo rejected", zap.String("file", name), zap.Error(err))
		return nil, err
	}
	if int64(len(data)) > in.cfg.MaxFileSize {
		return nil, in.tooLarge(int64(len(data)))
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to allocate logo id: %w", err)
	}

	a := &Asset{
		ID:         id,
		Kind:       kind,
		FileName:   name,
		ByteSize:   int64(len(data)),
		rasterSize: in.cfg.VectorRasterSize,
		data:       data,
		previewURI: images.DataURI(kind.MimeType(), data),
	}

	if kind.IsVector() {
		if _, err := images.ParseSVG(data); err != nil {
			return nil, common.WrapError(common.CodeInvalidFileType, "logo", err)
		}
	} else {
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, common.WrapError(common.CodeInvalidFileType, "logo", fmt.Errorf("unable to decode %s: %w", kind, err))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a.img = img
		a.Width, a.Height = img.Bounds().Dx(), img.Bounds().Dy()

		if a.Width < in.cfg.MinWidth || a.Height < in.cfg.MinHeight {
			a.warnings = append(a.warnings, common.Issue{Code: common.CodeSmallLogo, Field: "logo"})
			in.log.Warn("Logo resolution is below recommended minimum",
				zap.String("file", name), zap.Int("width", a.Width), zap.Int("height", a.Height),
				zap.Int("min_width", in.cfg.MinWidth), zap.Int("min_height", in.cfg.MinHeight))
		}
	}

	in.log.Debug("Logo ingested",
		zap.Stringer("id", a.ID), zap.String("file", name), zap.Stringer("kind", kind),
		zap.Int64("size", a.ByteSize), zap.Int("width", a.Width), zap.Int("height", a.Height))
	return a, nil
}

func (in *Ingestor) tooLarge(size int64) error {
	return common.NewError(common.CodeFileTooLarge, "logo", "logo is %d bytes, limit is %d", size, in.cfg.MaxFileSize)
}

func detectKind(data []byte) (common.LogoKind, error) {
	t, err := sniff(data)
	if err != nil {
		return 0, common.WrapError(common.CodeInvalidFileType, "logo", err)
	}
	switch t.MIME.Value {
	case "image/png":
		return common.LogoKindPng, nil
	case "image/jpeg":
		return common.LogoKindJpeg, nil
	case svgType.MIME.Value:
		return common.LogoKindSvg, nil
	}
	if len(t.MIME.Value) == 0 {
		return 0, common.NewError(common.CodeInvalidFileType, "logo", "unrecognized file content")
	}
	return 0, common.NewError(common.CodeInvalidFileType, "logo", "%s is not supported", t.MIME.Value)
}
