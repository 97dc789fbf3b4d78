// Package ocr defines the text extraction boundary used by the upload flow.
//
// An Extractor turns raw image bytes into an ordered list of text fragments.
// By convention the first fragment is the full text block and later fragments
// are smaller units such as words; the exact granularity belongs to the
// backend.
//
// # Backends
//
//   - vision: Google Cloud Vision document text detection (subpackage vision)
//   - tesseract: local Tesseract engine via gosseract (subpackage tesseract)
//   - none: Nop, which never finds text
//
// Backends do not retry. Failures are returned to the caller as errors.
package ocr
