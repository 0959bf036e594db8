package images

import (
	"bytes"
	"encoding/binary"
	"image"
	"testing"

	"logoprev/common"
)

func TestStampDensity(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		stamped bool
		wantErr bool
	}{
		{"bare jpeg", []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04}, true, false},
		{"already has APP0", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, false, false},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47}, false, true},
		{"too short", []byte{0xFF, 0xD8}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := stampDensity(tt.data, 300)
			if (err != nil) != tt.wantErr {
				t.Fatalf("stampDensity() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !tt.stamped {
				if !bytes.Equal(out, tt.data) {
					t.Error("data with APP0 was modified")
				}
				return
			}
			if len(out) != len(tt.data)+18 || !bytes.Equal(out[2:4], []byte{0xFF, 0xE0}) {
				t.Fatalf("APP0 was not inserted: % x", out)
			}
			if out[13] != jfifPerInch {
				t.Errorf("density unit = %d, want per inch", out[13])
			}
			if x, y := binary.BigEndian.Uint16(out[14:16]), binary.BigEndian.Uint16(out[16:18]); x != 300 || y != 300 {
				t.Errorf("density = %dx%d, want 300x300", x, y)
			}
			if !bytes.Equal(out[20:], tt.data[2:]) {
				t.Error("original segments were not preserved")
			}
		})
	}
}

func TestEncode_JPEGDensity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	data, err := Encode(img, common.PreviewFormatJpeg, 80)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(data[2:4], []byte{0xFF, 0xE0}) {
		t.Fatal("expected JFIF APP0 marker")
	}
	if got := binary.BigEndian.Uint16(data[14:16]); got != screenDPI {
		t.Errorf("density = %d, want %d", got, screenDPI)
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("encoded data does not decode: %v", err)
	}
}
