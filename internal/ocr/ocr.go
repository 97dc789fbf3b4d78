package ocr

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by ParseBackend.
const (
	BackendVision    = "vision"
	BackendTesseract = "tesseract"
	BackendNone      = "none"
)

// Extractor extracts text fragments from an encoded image.
type Extractor interface {
	ExtractText(ctx context.Context, image []byte) ([]string, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, image []byte) ([]string, error)

// ExtractText calls f(ctx, image).
func (f ExtractorFunc) ExtractText(ctx context.Context, image []byte) ([]string, error) {
	return f(ctx, image)
}

// Nop is an Extractor that reports no text for any image.
var Nop Extractor = ExtractorFunc(func(ctx context.Context, image []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []string{}, nil
})

// ParseBackend normalizes a backend name and rejects unknown ones.
func ParseBackend(name string) (string, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case BackendVision, BackendTesseract, BackendNone:
		return n, nil
	default:
		return "", fmt.Errorf("unknown OCR backend %q (want %s, %s or %s)",
			name, BackendVision, BackendTesseract, BackendNone)
	}
}
