// Package vision extracts text through the Google Cloud Vision API.
//
// Credentials are discovered the usual Google Cloud way
// (GOOGLE_APPLICATION_CREDENTIALS or the metadata server).
package vision

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
)

// Extractor runs DOCUMENT_TEXT_DETECTION on each image.
type Extractor struct {
	client *vision.ImageAnnotatorClient
}

// New dials the Vision API.
func New(ctx context.Context) (*Extractor, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &Extractor{client: client}, nil
}

// Close releases the underlying connection.
func (e *Extractor) Close() error {
	return e.client.Close()
}

// ExtractText returns the description of every text annotation, full text
// first, in the order the API reports them.
func (e *Extractor) ExtractText(ctx context.Context, image []byte) ([]string, error) {
	resp, err := e.client.BatchAnnotateImages(ctx, newRequest(image))
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	return descriptions(resp)
}

func newRequest(image []byte) *visionpb.BatchAnnotateImagesRequest {
	return &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{{
				Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION,
			}},
		}},
	}
}

func descriptions(resp *visionpb.BatchAnnotateImagesResponse) ([]string, error) {
	texts := []string{}
	for _, r := range resp.GetResponses() {
		if st := r.GetError(); st != nil && st.GetCode() != 0 {
			return nil, fmt.Errorf("vision error %d: %s", st.GetCode(), st.GetMessage())
		}
		for _, a := range r.GetTextAnnotations() {
			texts = append(texts, a.GetDescription())
		}
	}
	return texts, nil
}
