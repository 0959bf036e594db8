package store

import (
	"github.com/shopspring/decimal"

	"logoprev/crop"
)

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DraftRequest saves single product customization.
type DraftRequest struct {
	ProductID       string      `json:"productId"`
	LogoFileURL     string      `json:"logoFileUrl"`
	LogoFileName    string      `json:"logoFileName"`
	LogoFileSize    int64       `json:"logoFileSize"`
	LogoDimensions  *Dimensions `json:"logoDimensions,omitempty"`
	CropData        crop.Region `json:"cropData"`
	CroppedImageURL string      `json:"croppedImageUrl"`
	PreviewImageURL string      `json:"previewImageUrl"`
	BundleID        string      `json:"bundleId,omitempty"`
	BundleName      string      `json:"bundleName,omitempty"`
}

type DraftResponse struct {
	DraftID string `json:"draftId"`
}

type BundleItemRequest struct {
	ProductID       string          `json:"productId"`
	CustomizationID string          `json:"customizationId"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
}

// BundleRequest creates bundle out of previously saved drafts.
type BundleRequest struct {
	BundleName string              `json:"bundleName"`
	Items      []BundleItemRequest `json:"items"`
}

type BundleResponse struct {
	BundleID string `json:"bundleId"`
}
