package crop

import "image"

// View is interactive crop position. Pan is measured in source pixels from
// the centered frame position.
type View struct {
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
	Zoom float64 `json:"zoom"`
}

var defaultView = View{Zoom: 1}

// State is one of Idle, Adjusting or Confirmed.
type State interface {
	isState()
	String() string
}

// Idle is initial state, also entered on reset.
type Idle struct{}

// Adjusting carries view user is working with.
type Adjusting struct {
	View View
}

// Confirmed carries accepted region together with cropped raster.
type Confirmed struct {
	View    View
	Region  Region
	Image   image.Image
	DataURI string
}

func (Idle) isState()      {}
func (Adjusting) isState() {}
func (Confirmed) isState() {}

func (Idle) String() string      { return "idle" }
func (Adjusting) String() string { return "adjusting" }
func (Confirmed) String() string { return "confirmed" }
