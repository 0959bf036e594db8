package config

import "logoprev/common"

// Enums live in common so engine packages do not depend on configuration
// loading, aliases keep configuration code readable.
type PreviewFormat = common.PreviewFormat

const (
	PreviewFormatPng  = common.PreviewFormatPng
	PreviewFormatJpeg = common.PreviewFormatJpeg
)
