package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Source is an image given either encoded or already decoded.
type Source struct {
	data []byte
	img  image.Image
}

func FromBytes(data []byte) Source {
	return Source{data: data}
}

func FromImage(img image.Image) Source {
	return Source{img: img}
}

func (s Source) IsZero() bool {
	return s.img == nil && len(s.data) == 0
}

func (s Source) decode(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.img != nil {
		return s.img, nil
	}
	if len(s.data) == 0 {
		return nil, errors.New("no image data")
	}
	img, err := imaging.Decode(bytes.NewReader(s.data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("unable to decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, errors.New("image is empty")
	}
	return img, ctx.Err()
}
