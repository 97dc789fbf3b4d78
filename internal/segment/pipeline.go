//go:build !gocv

package segment

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// findContours runs grayscale, blur, threshold and border following in pure
// Go. Contour coordinates are reported in img's coordinate space.
func findContours(img image.Image) ([]contour, error) {
	origin := img.Bounds().Min

	// bild expects a zero origin; Clone also normalizes odd color models.
	// Alpha is dropped, as a color decode in OpenCV would: a transparent
	// white pixel stays white.
	src := imaging.Clone(img)
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff
	}

	gray := effect.GrayscaleWithWeights(src, 0.299, 0.587, 0.114)
	blurred := convolution.Convolve(gray, gaussianKernel(BlurKernelSize), &convolution.Options{
		Wrap:      false,
		KeepAlpha: true,
	})

	contours := externalContours(threshold(blurred, Cutoff))

	if origin != (image.Point{}) {
		for i := range contours {
			for j := range contours[i].points {
				contours[i].points[j] = contours[i].points[j].Add(origin)
			}
			contours[i].bounds = contours[i].bounds.Add(origin)
		}
	}

	return contours, nil
}

// gaussianKernel builds a normalized size x size Gaussian kernel. The sigma
// is the one OpenCV derives when given zero: 0.3*((size-1)*0.5 - 1) + 0.8.
func gaussianKernel(size int) *convolution.Kernel {
	sigma := 0.3*((float64(size)-1)*0.5-1) + 0.8
	half := size / 2

	k := convolution.NewKernel(size, size)
	var sum float64
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x - half)
			dy := float64(y - half)
			v := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			k.Matrix[y*size+x] = v
			sum += v
		}
	}
	for i := range k.Matrix {
		k.Matrix[i] /= sum
	}

	return k
}

// threshold applies the inverted binary threshold to a gray-valued RGBA image:
// intensity <= cutoff becomes foreground. Only the red channel is read since
// all three channels carry the same value.
func threshold(img *image.RGBA, cutoff uint8) *mask {
	bounds := img.Bounds()
	m := newMask(bounds.Dx(), bounds.Dy())

	for y := 0; y < m.h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < m.w; x++ {
			m.pix[y*m.w+x] = row[x*4] <= cutoff
		}
	}

	return m
}
