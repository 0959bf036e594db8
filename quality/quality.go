// Package quality decides whether current customization could proceed to
// cart and annotates it with print quality warnings.
package quality

import (
	"math"

	"logoprev/catalog"
	"logoprev/common"
	"logoprev/config"
	"logoprev/crop"
)

const cmPerInch = 2.54

// Thresholds used by Validate.
type Thresholds struct {
	MinDPI        float64
	MinLogoWidth  int
	MinLogoHeight int
	MinCropSize   float64
}

func ThresholdsFrom(q *config.QualityConfig, c *config.CropConfig) Thresholds {
	return Thresholds{
		MinDPI:        q.MinDPI,
		MinLogoWidth:  q.MinLogoWidth,
		MinLogoHeight: q.MinLogoHeight,
		MinCropSize:   c.MinSize,
	}
}

// Logo describes ingested logo. Vector logos have no pixel dimensions and
// are never flagged for resolution.
type Logo struct {
	Width  int
	Height int
	Vector bool
}

// Input is everything validation looks at, nil means missing.
type Input struct {
	Logo       *Logo
	Crop       *crop.Region
	HasPreview bool
	Area       *catalog.PrintArea
}

type Result struct {
	Valid    bool           `json:"isValid"`
	Errors   []common.Issue `json:"errors"`
	Warnings []common.Issue `json:"warnings"`
}

// HasError reports whether result contains error with given code.
func (r Result) HasError(code common.Code) bool {
	return hasCode(r.Errors, code)
}

// HasWarning reports whether result contains warning with given code.
func (r Result) HasWarning(code common.Code) bool {
	return hasCode(r.Warnings, code)
}

func hasCode(list []common.Issue, code common.Code) bool {
	for _, i := range list {
		if i.Code == code {
			return true
		}
	}
	return false
}

// Validate runs presence, crop geometry and print resolution checks. Only
// errors make result invalid, warnings are informational.
func Validate(in Input, th Thresholds) Result {
	res := Result{Errors: []common.Issue{}, Warnings: []common.Issue{}}

	if in.Logo == nil {
		res.Errors = append(res.Errors, common.Issue{Code: common.CodeNoLogo, Field: "logo"})
	}
	if in.Crop == nil {
		res.Errors = append(res.Errors, common.Issue{Code: common.CodeNoCrop, Field: "crop"})
	}
	if !in.HasPreview {
		res.Errors = append(res.Errors, common.Issue{Code: common.CodeNoPreview, Field: "preview"})
	}

	if in.Crop != nil {
		if in.Crop.Width < th.MinCropSize || in.Crop.Height < th.MinCropSize {
			res.Errors = append(res.Errors, common.Issue{Code: common.CodeCropTooSmall, Field: "crop"})
		}
		if in.Crop.OffsetX < 0 || in.Crop.OffsetY < 0 {
			res.Errors = append(res.Errors, common.Issue{Code: common.CodeInvalidCrop, Field: "crop"})
		}
	}

	if in.Logo != nil && !in.Logo.Vector {
		if in.Area != nil {
			if dpi, ok := EffectiveDPI(in.Logo.Width, in.Logo.Height, *in.Area); ok && dpi < th.MinDPI {
				res.Warnings = append(res.Warnings, common.Issue{Code: common.CodeLowResolution, Field: "logo"})
			}
		}
		if in.Logo.Width < th.MinLogoWidth || in.Logo.Height < th.MinLogoHeight {
			res.Warnings = append(res.Warnings, common.Issue{Code: common.CodeSmallLogo, Field: "logo"})
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// EffectiveDPI is the lower of horizontal and vertical pixel density logo
// would have when printed over whole print area. False is returned when area
// has no physical size.
func EffectiveDPI(width, height int, area catalog.PrintArea) (float64, bool) {
	if area.PhysicalWidthCm <= 0 || area.PhysicalHeightCm <= 0 {
		return 0, false
	}
	wIn := area.PhysicalWidthCm / cmPerInch
	hIn := area.PhysicalHeightCm / cmPerInch
	return math.Min(float64(width)/wIn, float64(height)/hIn), true
}
