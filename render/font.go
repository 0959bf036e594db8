package render

import (
	"fmt"
	"os"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// loadFont reads watermark font, embedded Go Regular is used when path is
// empty.
func loadFont(path string) (*opentype.Font, error) {
	data := goregular.TTF
	if len(path) > 0 {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("unable to read watermark font: %w", err)
		}
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse watermark font: %w", err)
	}
	return f, nil
}
