package multiproduct

import (
	"logoprev/crop"
	"logoprev/render"
)

// Outcome of applying customization to one target product. It is one of
// AutoApplied, ManuallyApplied, NeedsManualCrop or RenderFailed.
type Outcome interface {
	isOutcome()
	Product() string
}

// AutoApplied target reused source crop, its aspect ratio was close enough.
type AutoApplied struct {
	ProductID  string
	AspectDiff float64
	Region     crop.Region
	Cropped    string
	Composite  *render.Composite
}

// ManuallyApplied target got its own crop from user.
type ManuallyApplied struct {
	ProductID string
	Region    crop.Region
	Cropped   string
	Composite *render.Composite
}

// NeedsManualCrop target could not reuse source crop. No composite exists
// until user crops logo for it.
type NeedsManualCrop struct {
	ProductID    string
	AspectDiff   float64
	TargetAspect float64
}

// RenderFailed target was eligible for automatic crop but preview could not
// be drawn, rendering could be retried.
type RenderFailed struct {
	ProductID string
	Region    crop.Region
	Err       error
}

func (AutoApplied) isOutcome()     {}
func (ManuallyApplied) isOutcome() {}
func (NeedsManualCrop) isOutcome() {}
func (RenderFailed) isOutcome()    {}

func (o AutoApplied) Product() string     { return o.ProductID }
func (o ManuallyApplied) Product() string { return o.ProductID }
func (o NeedsManualCrop) Product() string { return o.ProductID }
func (o RenderFailed) Product() string    { return o.ProductID }

// Application is flat view of outcome in the shape UI consumes.
type Application struct {
	ProductID       string            `json:"productId"`
	CropRegion      *crop.Region      `json:"cropRegion"`
	Composite       *render.Composite `json:"composite"`
	NeedsManualCrop bool              `json:"needsManualCrop"`
	IsApplied       bool              `json:"isApplied"`
}

func ApplicationOf(o Outcome) Application {
	switch v := o.(type) {
	case AutoApplied:
		return Application{ProductID: v.ProductID, CropRegion: &v.Region, Composite: v.Composite, IsApplied: true}
	case ManuallyApplied:
		return Application{ProductID: v.ProductID, CropRegion: &v.Region, Composite: v.Composite, IsApplied: true}
	case NeedsManualCrop:
		return Application{ProductID: v.ProductID, NeedsManualCrop: true}
	case RenderFailed:
		return Application{ProductID: v.ProductID, CropRegion: &v.Region}
	default:
		// this should never happen
		panic("unknown outcome")
	}
}

// Applied returns composite and crop for outcomes which have them.
func Applied(o Outcome) (crop.Region, *render.Composite, string, bool) {
	switch v := o.(type) {
	case AutoApplied:
		return v.Region, v.Composite, v.Cropped, true
	case ManuallyApplied:
		return v.Region, v.Composite, v.Cropped, true
	default:
		return crop.Region{}, nil, "", false
	}
}
