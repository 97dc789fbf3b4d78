package segment

import (
	"fmt"
	"image"

	"github.com/ironsheep/visual-extract/internal/imaging"
)

const (
	// BlurKernelSize is the width and height of the Gaussian kernel.
	BlurKernelSize = 5

	// Cutoff is the threshold on the 0-255 intensity scale. Pixels at or
	// below it are foreground.
	Cutoff = 128
)

// Segment is one visual element cut out of a source image.
type Segment struct {
	// Index is the position of the segment in discovery order.
	Index int

	// Bounds is the axis-aligned bounding box in the source image's
	// coordinate space. It always lies within the source bounds.
	Bounds image.Rectangle

	// Contour is the outer border of the region with collinear points
	// removed, in source coordinates.
	Contour []image.Point

	// Image holds a copy of the source pixels under Bounds, with its origin
	// at (0,0).
	Image image.Image
}

// String formats the bounding box the way the upload log reports it.
func (s Segment) String() string {
	return fmt.Sprintf("x=%d, y=%d, w=%d, h=%d", s.Bounds.Min.X, s.Bounds.Min.Y, s.Bounds.Dx(), s.Bounds.Dy())
}

// contour is a traced region border together with its bounding box.
type contour struct {
	points []image.Point
	bounds image.Rectangle
}

// Image segments img and returns one Segment per external contour.
//
// An image without dark regions yields an empty, non-nil slice and a nil
// error.
func Image(img image.Image) ([]Segment, error) {
	contours, err := findContours(img)
	if err != nil {
		return nil, err
	}

	segments := make([]Segment, 0, len(contours))
	for i, c := range contours {
		crop, err := imaging.Crop(img, c.bounds)
		if err != nil {
			return nil, fmt.Errorf("failed to crop segment %d: %w", i, err)
		}
		segments = append(segments, Segment{
			Index:   i,
			Bounds:  c.bounds.Intersect(img.Bounds()),
			Contour: c.points,
			Image:   crop,
		})
	}

	return segments, nil
}

// File loads the image at path and segments it.
//
// A missing file yields an error matching imaging.ErrNotFound; no partial
// result is returned.
func File(path string) ([]Segment, error) {
	img, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}
	return Image(img)
}
