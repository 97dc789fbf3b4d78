//go:build gocv

package segment

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// findContours runs the OpenCV call sequence: cvtColor, GaussianBlur,
// threshold (binary inverted), findContours (external, simple chain) and
// boundingRect. Contour coordinates are reported in img's coordinate space.
func findContours(img image.Image) ([]contour, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(BlurKernelSize, BlurKernelSize), 0, 0, gocv.BorderDefault)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(blurred, &thresh, Cutoff, 255, gocv.ThresholdBinaryInv)

	found := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer found.Close()

	origin := img.Bounds().Min
	contours := make([]contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		pv := found.At(i)

		points := pv.ToPoints()
		for j := range points {
			points[j] = points[j].Add(origin)
		}

		contours = append(contours, contour{
			points: points,
			bounds: gocv.BoundingRect(pv).Add(origin),
		})
	}

	return contours, nil
}
