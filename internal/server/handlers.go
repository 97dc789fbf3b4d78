package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/ironsheep/visual-extract/internal/imaging"
	"github.com/ironsheep/visual-extract/internal/segment"
)

const formField = "file"

func writeText(w http.ResponseWriter, format string, args ...any) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, format, args...)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.renderer.RenderUploadForm(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())

	file, header, err := r.FormFile(formField)
	if err != nil {
		switch {
		case errors.Is(err, http.ErrMissingFile) && s.hasEmptyFileField(r):
			writeText(w, "No selected file")
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			writeText(w, "No file part")
		default:
			writeText(w, "An error occurred: %v", err)
		}
		return
	}
	defer file.Close()

	// Filename is already reduced to its base name by the multipart reader.
	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		writeText(w, "No selected file")
		return
	}

	path := filepath.Join(s.cfg.UploadDir, name)
	if err := saveUpload(file, path); err != nil {
		writeText(w, "An error occurred: %v", err)
		return
	}

	if _, err := os.Stat(path); err != nil {
		writeText(w, "File %s was not saved properly", path)
		return
	}

	page, err := s.process(r, path)
	if err != nil {
		log.Printf("Processing %s failed: %v", path, err)
		writeText(w, "An error occurred: %v", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// hasEmptyFileField reports whether the form carried the file field without
// a filename, which the multipart reader files under values.
func (s *Server) hasEmptyFileField(r *http.Request) bool {
	if r.MultipartForm == nil {
		return false
	}
	_, ok := r.MultipartForm.Value[formField]
	return ok
}

// process runs extraction then segmentation on the stored upload and
// renders the result page.
func (s *Server) process(r *http.Request, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	if s.cfg.Debug() {
		if info, err := imaging.Inspect(data); err == nil {
			log.Printf("Received %s: %dx%d %s, %d bytes", path, info.Width, info.Height, info.Format, info.SizeBytes)
		}
	}

	texts, err := s.extractor.ExtractText(r.Context(), data)
	if err != nil {
		return nil, err
	}

	segments, err := segment.File(path)
	if err != nil {
		return nil, err
	}
	s.logSegments(segments)

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, texts, segments); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) logSegments(segments []segment.Segment) {
	if s.cfg.Debug() {
		for i, seg := range segments {
			log.Printf("Segment %d: %s", i+1, seg)
		}
	}

	if len(segments) == 0 {
		log.Println("No visual elements detected")
		return
	}
	log.Printf("%d visual elements detected", len(segments))
}

func saveUpload(src io.Reader, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if name == "." || !fs.ValidPath(name) {
		http.NotFound(w, r)
		return
	}

	http.ServeFileFS(w, r, os.DirFS(s.cfg.UploadDir), name)
}
