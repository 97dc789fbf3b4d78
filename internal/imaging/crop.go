package imaging

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// Crop extracts a rectangular region from an image.
//
// The region is clipped to the image bounds first, so the result never
// extends outside the source. The returned image has its origin at (0,0) and
// owns its pixels; it does not alias img.
//
// Returns an error if the clipped region is empty.
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	clipped := r.Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, img.Bounds())
	}

	return imaging.Crop(img, clipped), nil
}

// SavePNG encodes img as PNG and writes it to path, replacing any existing
// file. The format does not depend on the extension of path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
