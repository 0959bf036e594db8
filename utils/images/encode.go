package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"

	"logoprev/common"
)

// screenDPI is stamped into preview JPEGs, previews are never meant for print.
const screenDPI = 72

// Encode serializes raster in requested preview format.
func Encode(img image.Image, format common.PreviewFormat, jpegQuality int) ([]byte, error) {
	switch format {
	case common.PreviewFormatPng:
		buf := new(bytes.Buffer)
		if err := imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression)); err != nil {
			return nil, fmt.Errorf("unable to encode PNG: %w", err)
		}
		return buf.Bytes(), nil
	case common.PreviewFormatJpeg:
		data, err := encodeJPEG(img, jpegQuality, screenDPI)
		if err != nil {
			return nil, fmt.Errorf("unable to encode JPEG: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported preview format %s", format)
	}
}

// DataURI builds base64 "data:" URI for display only handles.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI is reverse of DataURI, only base64 payloads are supported.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("malformed data URI")
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, errors.New("only base64 data URIs are supported")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("malformed data URI payload: %w", err)
	}
	return mimeType, data, nil
}
