// Package segment splits a raster image into rectangular visual elements.
//
// The segmenter targets high-contrast scanned documents: printed text and
// diagrams on white paper. It finds every connected dark region and returns
// the crop of the original image under that region's bounding box.
//
// # Algorithm
//
//  1. Grayscale: ITU-R BT.601 luminance (0.299*R + 0.587*G + 0.114*B)
//  2. Gaussian blur: 5x5 kernel, sigma derived from the kernel size (1.1)
//  3. Inverted binary threshold: intensity <= 128 is foreground
//  4. External contours: border following from the first pixel of every
//     8-connected foreground region; regions nested in another region's hole
//     are skipped, and collinear border points are compressed away
//  5. Bounding box per contour
//  6. Crop of the original (non-thresholded) pixels
//
// Nothing is tuned per image. There is no adaptive thresholding, no merging
// of overlapping boxes and no size filter: a single dark pixel that survives
// the blur becomes a segment.
//
// # Ordering
//
// Segments are returned in discovery order, which for the default backend is
// the raster order (top-to-bottom, then left-to-right) of each region's first
// pixel. The OpenCV backend reports whatever order OpenCV produces; callers
// that need a stable order should not rely on it across backends.
//
// # Backends
//
// The default build is pure Go, using bild for the grayscale and convolution
// steps. Building with -tags gocv runs steps 1-5 through OpenCV (gocv), which
// requires the OpenCV shared libraries at build and run time.
package segment
