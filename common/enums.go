// Package common holds types shared between engine components and the
// configuration: enumerations, issue codes and the domain error type.
package common

//go:generate go tool go-enum --marshal --names --values

// Kind of accepted logo source.
// ENUM(png, jpeg, svg)
type LogoKind int

// IsVector reports whether logo has no intrinsic pixel dimensions.
func (k LogoKind) IsVector() bool {
	return k == LogoKindSvg
}

func (k LogoKind) MimeType() string {
	switch k {
	case LogoKindPng:
		return "image/png"
	case LogoKindJpeg:
		return "image/jpeg"
	case LogoKindSvg:
		return "image/svg+xml"
	default:
		// this should never happen
		panic("unsupported logo kind")
	}
}

// Encoding used for preview rasters and data URIs.
// ENUM(png, jpeg)
type PreviewFormat int

func (f PreviewFormat) MimeType() string {
	switch f {
	case PreviewFormatPng:
		return "image/png"
	case PreviewFormatJpeg:
		return "image/jpeg"
	default:
		// this should never happen
		panic("unsupported preview format")
	}
}

func (f PreviewFormat) Ext() string {
	switch f {
	case PreviewFormatPng:
		return ".png"
	case PreviewFormatJpeg:
		return ".jpg"
	default:
		// this should never happen
		panic("unsupported preview format")
	}
}
