// Package render writes segment crops to disk and renders the result page.
//
// Segment images are stored as segment_<index>.png in the served directory
// and referenced from the page under the configured URL prefix. A later
// render overwrites the files of an earlier one.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"path"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/visual-extract/internal/imaging"
	"github.com/ironsheep/visual-extract/internal/segment"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Renderer renders result pages and owns the directory segment crops go to.
type Renderer struct {
	dir       string
	urlPrefix string
	workers   int
}

// New returns a Renderer that writes crops into dir and links them as
// urlPrefix/segment_<i>.png.
func New(dir, urlPrefix string) *Renderer {
	return &Renderer{
		dir:       dir,
		urlPrefix: urlPrefix,
		workers:   runtime.NumCPU(),
	}
}

// element is the template view of one segment.
type element struct {
	Index   int
	URL     string
	Caption string
}

// FileName is the on-disk name of the crop for segment i.
func FileName(i int) string {
	return fmt.Sprintf("segment_%d.png", i)
}

// Render writes every segment crop and then the two-column result page.
// Texts are HTML-escaped. Nothing is written to w if a crop cannot be saved.
func (r *Renderer) Render(w io.Writer, texts []string, segments []segment.Segment) error {
	if err := r.saveSegments(segments); err != nil {
		return err
	}

	elements := make([]element, len(segments))
	for i, s := range segments {
		elements[i] = element{
			Index:   i,
			URL:     path.Join(r.urlPrefix, FileName(i)),
			Caption: fmt.Sprintf("%s, mean color %s", s, imaging.MeanColor(s.Image)),
		}
	}

	data := struct {
		Texts    []string
		Elements []element
	}{texts, elements}

	if err := templates.ExecuteTemplate(w, "page.html", data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// RenderUploadForm writes the upload form.
func (r *Renderer) RenderUploadForm(w io.Writer) error {
	if err := templates.ExecuteTemplate(w, "upload.html", nil); err != nil {
		return fmt.Errorf("failed to render upload form: %w", err)
	}
	return nil
}

func (r *Renderer) saveSegments(segments []segment.Segment) error {
	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, s := range segments {
		i, s := i, s
		g.Go(func() error {
			p := filepath.Join(r.dir, FileName(i))
			if err := imaging.SavePNG(s.Image, p); err != nil {
				return fmt.Errorf("failed to save segment %d: %w", i, err)
			}
			return nil
		})
	}

	return g.Wait()
}
