package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"text/template"
	"time"

	"github.com/disintegration/imaging"
	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"logoprev/common"
	"logoprev/config"
)

// Artifact is downloadable watermarked rendition of composite.
type Artifact struct {
	FileName string
	Data     []byte
	Image    *image.NRGBA
}

// NameValues are available to download file name template.
type NameValues struct {
	ProductName string
	ProductID   string
	// Date is YYYYMMDD
	Date string
	// Time is HHMMSS
	Time string
}

// Download re-renders composite on download surface, puts watermark into
// bottom-right corner and always encodes PNG.
func (r *Renderer) Download(ctx context.Context, req Request, productID, productName string, at time.Time) (*Artifact, error) {
	img, _, _, err := r.compose(ctx, req, r.download.Size)
	if err != nil {
		return nil, err
	}
	if err := r.watermark(img); err != nil {
		return nil, common.WrapError(common.CodePreviewRenderFailed, "watermark", err)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, common.WrapError(common.CodePreviewRenderFailed, "download", err)
	}

	name := r.FileName(NameValues{
		ProductName: productName,
		ProductID:   productID,
		Date:        at.Format("20060102"),
		Time:        at.Format("150405"),
	})
	r.log.Debug("Download artifact prepared", zap.String("file", name), zap.Int("bytes", buf.Len()))
	return &Artifact{FileName: name, Data: buf.Bytes(), Image: img}, nil
}

func (r *Renderer) watermark(img *image.NRGBA) error {
	text := strings.TrimSpace(r.download.WatermarkText)
	if len(text) == 0 || r.download.WatermarkOpacity <= 0 {
		return nil
	}

	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    r.download.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	b := img.Bounds()
	margin := max(b.Dx()/40, 1)
	advance := font.MeasureString(face, text)
	descent := face.Metrics().Descent

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{A: uint8(r.download.WatermarkOpacity*255 + 0.5)}),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(b.Max.X-margin) - advance,
			Y: fixed.I(b.Max.Y-margin) - descent,
		},
	}
	d.DrawString(text)
	return nil
}

// FileName expands configured template, falls back to default naming when
// template is empty or fails.
func (r *Renderer) FileName(v NameValues) string {
	name, err := expandNameTemplate(r.download.FileNameTemplate, v)
	if err != nil {
		r.log.Warn("Unable to prepare download file name", zap.Error(err))
		name = ""
	}
	if len(name) == 0 {
		name = v.ProductName + "_Customized_" + v.Date
	}
	if r.download.Transliterate {
		name = slug.Make(name)
	}
	return config.CleanFileName(name) + ".png"
}

func expandNameTemplate(field string, v NameValues) (string, error) {
	if len(strings.TrimSpace(field)) == 0 {
		return "", nil
	}
	tmpl, err := template.New(string(config.FileNameTemplateFieldName)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", config.FileNameTemplateFieldName, err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
