package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// jfifPerInch is JFIF density unit for dots per inch.
const jfifPerInch = 1

// jfifSegment is JFIF APP0 segment without thumbnail, density is filled in
// by stampDensity.
var jfifSegment = [18]byte{
	0xFF, 0xE0, // APP0
	0x00, 0x10, // segment length
	'J', 'F', 'I', 'F', 0x00,
	0x01, 0x02, // version 1.02
	jfifPerInch,
	0, 0, // x density
	0, 0, // y density
	0, 0, // no thumbnail
}

// stampDensity puts JFIF APP0 segment with given density right after SOI
// marker. Standard library encoder never writes one, so viewers would guess
// density otherwise. Data which already has APP0 is returned as is.
func stampDensity(data []byte, dpi uint16) ([]byte, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, errors.New("not a jpeg")
	}
	if data[2] == 0xFF && data[3] == 0xE0 {
		return data, nil
	}

	seg := jfifSegment
	binary.BigEndian.PutUint16(seg[12:14], dpi)
	binary.BigEndian.PutUint16(seg[14:16], dpi)

	out := make([]byte, 0, len(data)+len(seg))
	out = append(out, data[:2]...)
	out = append(out, seg[:]...)
	return append(out, data[2:]...), nil
}

// encodeJPEG encodes raster with requested quality and density.
func encodeJPEG(img image.Image, quality int, dpi uint16) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return stampDensity(buf.Bytes(), dpi)
}
