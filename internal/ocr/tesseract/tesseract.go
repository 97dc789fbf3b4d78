// Package tesseract extracts text with a local Tesseract engine.
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The tessdata directory can be overridden with TESSDATA_PREFIX or
// Options.TessdataPrefix.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Options configures the engine.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "deu+eng".
	Language string

	// TessdataPrefix is the directory holding *.traineddata files.
	// Empty uses the engine default.
	TessdataPrefix string
}

// Extractor runs Tesseract on each image with a fresh client.
type Extractor struct {
	opts          Options
	clientFactory func() *gosseract.Client
}

// New returns an Extractor. An empty language means English.
func New(opts Options) *Extractor {
	if opts.Language == "" {
		opts.Language = "eng"
	}
	return &Extractor{opts: opts, clientFactory: gosseract.NewClient}
}

// ExtractText returns the full recognized text followed by each word.
// Empty results are skipped, so a blank image yields an empty slice.
func (e *Extractor) ExtractText(ctx context.Context, image []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := e.clientFactory()
	defer client.Close()

	if e.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.opts.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(strings.Split(e.opts.Language, "+")...); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	texts := []string{}
	if full := strings.TrimSpace(text); full != "" {
		texts = append(texts, full)
	}

	// Return just the text if boxes fail
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return texts, nil
	}
	for _, box := range boxes {
		if w := strings.TrimSpace(box.Word); w != "" {
			texts = append(texts, w)
		}
	}
	return texts, nil
}

// Version reports the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
