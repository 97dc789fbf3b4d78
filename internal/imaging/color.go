package imaging

import (
	"image"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// MeanColor returns the average color of img as "#RRGGBB".
//
// Pixels are averaged in linear RGB. Fully transparent pixels are skipped. An image with no opaque pixels reports
// "#000000".
func MeanColor(img image.Image) string {
	bounds := img.Bounds()

	var r, g, b float64
	n := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			lr, lg, lb := c.LinearRgb()
			r += lr
			g += lg
			b += lb
			n++
		}
	}

	if n == 0 {
		return "#000000"
	}

	mean := colorful.LinearRgb(r/float64(n), g/float64(n), b/float64(n)).Clamped()
	return strings.ToUpper(mean.Hex())
}
