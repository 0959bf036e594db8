package logo

import (
	"context"
	"errors"
	"image"
	"math"
	"sync"

	"github.com/google/uuid"

	"logoprev/common"
	"logoprev/utils/images"
)

// ErrReleased is returned when asset is used after its session ended.
var ErrReleased = errors.New("logo asset was released")

// Asset is an ingested logo. It never changes after ingestion, replacing a
// logo produces new asset with new identifier.
type Asset struct {
	ID       uuid.UUID
	Kind     common.LogoKind
	FileName string
	ByteSize int64
	// Width and Height are zero for vector logos.
	Width  int
	Height int

	warnings []common.Issue

	rasterSize int

	mu         sync.Mutex
	data       []byte
	previewURI string
	img        image.Image
	released   bool
}

// PreviewURI is display only handle of the original file, empty after
// release.
func (a *Asset) PreviewURI() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.previewURI
}

// Dimensions returns intrinsic pixel size, nil for vector logos.
func (a *Asset) Dimensions() *image.Point {
	if a.Kind.IsVector() {
		return nil
	}
	return &image.Point{X: a.Width, Y: a.Height}
}

// Warnings produced during ingestion.
func (a *Asset) Warnings() []common.Issue {
	return append([]common.Issue(nil), a.warnings...)
}

// Data returns original file content.
func (a *Asset) Data() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.released {
		return nil, ErrReleased
	}
	return a.data, nil
}

// Image returns raster for cropping. Vector logos are rasterized on first
// access, scaled up when their shorter side is below configured raster size.
func (a *Asset) Image(ctx context.Context) (image.Image, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.released {
		return nil, ErrReleased
	}
	if a.img != nil {
		return a.img, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	icon, err := images.ParseSVG(a.data)
	if err != nil {
		return nil, common.WrapError(common.CodeInvalidFileType, "logo", err)
	}
	targetW := 0
	if short := math.Min(icon.ViewBox.W, icon.ViewBox.H); short > 0 && short < float64(a.rasterSize) {
		targetW = int(math.Round(icon.ViewBox.W * float64(a.rasterSize) / short))
	}
	img, err := images.RasterizeSVGToImage(a.data, targetW, 0)
	if err != nil {
		return nil, common.WrapError(common.CodeInvalidFileType, "logo", err)
	}
	a.img = img
	return a.img, nil
}

// Released reports whether Release was called.
func (a *Asset) Released() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}

// Release drops file content, decoded raster and preview handle.
func (a *Asset) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.released {
		return
	}
	a.released = true
	a.data, a.img, a.previewURI = nil, nil, ""
}
