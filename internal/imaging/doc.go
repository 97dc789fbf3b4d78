// Package imaging provides the image I/O primitives used by the segmenter and
// the page renderer.
//
// It decodes uploaded files into standard Go image.Image values, cuts
// rectangular regions out of them, persists crops as PNG, and summarizes a
// crop's color for display. All coordinates use the image convention where
// (0,0) is the top-left corner, X increases rightward and Y increases downward.
//
// # Supported Formats
//
// Decoders are registered for PNG, JPEG, GIF, BMP, TIFF and WebP. Encoding is
// always PNG.
//
// # Error Handling
//
// A path that does not exist yields an error that matches ErrNotFound (and
// fs.ErrNotExist) with errors.Is. Any other read or decode problem is returned
// wrapped, so callers can tell "no such file" apart from "not an image".
//
// # Thread Safety
//
// All functions are stateless. Decoded images are never mutated by this
// package, so a loaded image may be shared between goroutines.
package imaging
