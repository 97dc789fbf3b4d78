package server

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/visual-extract/internal/config"
	"github.com/ironsheep/visual-extract/internal/ocr"
)

func newTestServer(t *testing.T, extractor ocr.Extractor) (*Server, string) {
	t.Helper()

	cfg := config.Default()
	cfg.UploadDir = t.TempDir()
	return New(cfg, extractor), cfg.UploadDir
}

func staticExtractor(texts ...string) ocr.Extractor {
	return ocr.ExtractorFunc(func(ctx context.Context, image []byte) ([]string, error) {
		return texts, nil
	})
}

// createPNG encodes a white canvas with the given black rectangles.
func createPNG(t *testing.T, width, height int, blobs ...image.Rectangle) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for _, b := range blobs {
		draw.Draw(img, b, image.NewUniform(color.Black), image.Point{}, draw.Src)
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartBody builds a form with one file part.
func multipartBody(t *testing.T, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, s *Server, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, field, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func requireText(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, want, rec.Body.String())
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t, ocr.Nop)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "<h1>Upload an Image</h1>")
	require.Contains(t, rec.Body.String(), `name="file"`)
}

func TestUpload_NoFilePart(t *testing.T) {
	s, _ := newTestServer(t, ocr.Nop)

	rec := upload(t, s, "attachment", "scan.png", createPNG(t, 10, 10))
	requireText(t, rec, "No file part")
}

func TestUpload_NotMultipart(t *testing.T) {
	s, _ := newTestServer(t, ocr.Nop)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("file=scan.png"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	requireText(t, rec, "No file part")
}

func TestUpload_NoSelectedFile(t *testing.T) {
	s, dir := newTestServer(t, ocr.Nop)

	rec := upload(t, s, "file", "", nil)
	requireText(t, rec, "No selected file")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestUpload_BlankImage(t *testing.T) {
	var got []byte
	extractor := ocr.ExtractorFunc(func(ctx context.Context, image []byte) ([]string, error) {
		got = image
		return []string{}, nil
	})
	s, dir := newTestServer(t, extractor)

	content := createPNG(t, 120, 80)
	rec := upload(t, s, "file", "blank.png", content)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "<p>No visual elements detected.</p>")
	require.NotContains(t, rec.Body.String(), "<img")
	require.Equal(t, content, got, "extractor receives the uploaded bytes")

	stored, err := os.ReadFile(filepath.Join(dir, "blank.png"))
	require.NoError(t, err)
	require.Equal(t, content, stored)
}

func TestUpload_TextAndSegments(t *testing.T) {
	s, dir := newTestServer(t, staticExtractor("Invoice 42", "Invoice", "42"))

	content := createPNG(t, 200, 150, image.Rect(20, 20, 60, 50), image.Rect(120, 80, 180, 130))
	rec := upload(t, s, "file", "invoice.png", content)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<p>Invoice 42</p>")
	require.Contains(t, body, `src="/uploads/segment_0.png" alt="Visual Element 0"`)
	require.Contains(t, body, `src="/uploads/segment_1.png" alt="Visual Element 1"`)
	require.NotContains(t, body, "segment_2.png")

	for _, name := range []string{"segment_0.png", "segment_1.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
	}
}

func TestUpload_ServesSegment(t *testing.T) {
	s, _ := newTestServer(t, ocr.Nop)

	rec := upload(t, s, "file", "one.png", createPNG(t, 100, 100, image.Rect(30, 30, 70, 60)))
	require.Contains(t, rec.Body.String(), "segment_0.png")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/segment_0.png", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	require.InDelta(t, 40, img.Bounds().Dx(), 1)
	require.InDelta(t, 30, img.Bounds().Dy(), 1)
}

func TestUpload_ExtractorError(t *testing.T) {
	extractor := ocr.ExtractorFunc(func(ctx context.Context, image []byte) ([]string, error) {
		return nil, errors.New("quota exceeded")
	})
	s, _ := newTestServer(t, extractor)

	rec := upload(t, s, "file", "scan.png", createPNG(t, 10, 10))
	requireText(t, rec, "An error occurred: quota exceeded")
}

func TestUpload_UndecodableImage(t *testing.T) {
	s, _ := newTestServer(t, ocr.Nop)

	rec := upload(t, s, "file", "notes.png", []byte("plain text, not an image"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Body.String(), "An error occurred: "), rec.Body.String())
	require.Contains(t, rec.Body.String(), "failed to decode image")
}

func TestUpload_UploadDirMissing(t *testing.T) {
	cfg := config.Default()
	cfg.UploadDir = filepath.Join(t.TempDir(), "gone")
	s := New(cfg, ocr.Nop)

	rec := upload(t, s, "file", "scan.png", createPNG(t, 10, 10))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Body.String(), "An error occurred: "), rec.Body.String())
}

func TestUpload_StripsDirectories(t *testing.T) {
	s, dir := newTestServer(t, ocr.Nop)

	rec := upload(t, s, "file", "../../etc/scan.png", createPNG(t, 10, 10))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := os.Stat(filepath.Join(dir, "scan.png"))
	require.NoError(t, err)
}

func TestUpload_TooLarge(t *testing.T) {
	cfg := config.Default()
	cfg.UploadDir = t.TempDir()
	cfg.MaxUploadMB = 1
	s := New(cfg, ocr.Nop)

	rec := upload(t, s, "file", "big.png", bytes.Repeat([]byte{0xff}, 2<<20))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Body.String(), "An error occurred: "), rec.Body.String())
}

func TestUploads_NotFound(t *testing.T) {
	s, _ := newTestServer(t, ocr.Nop)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploads_ServesVerbatim(t *testing.T) {
	s, dir := newTestServer(t, ocr.Nop)
	content := []byte("stored bytes")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), content, 0o644))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/notes.txt", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, content, rec.Body.Bytes())
}

func TestUploads_CORS(t *testing.T) {
	s, dir := newTestServer(t, ocr.Nop)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "segment_0.png"), createPNG(t, 4, 4), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/uploads/segment_0.png", nil)
	req.Header.Set("Origin", "https://viewer.example")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRun_GracefulShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.UploadDir = t.TempDir()
	s := New(cfg, ocr.Nop)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	require.NoError(t, <-done)
}

func TestRun_ListenError(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "256.0.0.1:bad"
	cfg.UploadDir = t.TempDir()
	s := New(cfg, ocr.Nop)

	err := s.Run(context.Background())
	require.ErrorContains(t, err, "server failed")
}

func TestUpload_DebugLogging(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	cfg := config.Default()
	cfg.UploadDir = t.TempDir()
	cfg.LogLevel = "debug"
	s := New(cfg, ocr.Nop)

	rec := upload(t, s, "file", "debug.png", createPNG(t, 100, 80, image.Rect(10, 20, 40, 50)))
	require.Equal(t, http.StatusOK, rec.Code)

	out := logs.String()
	require.Contains(t, out, "100x80 png")
	require.Contains(t, out, "Segment 1: x=10, y=20, w=30, h=30")
	require.Contains(t, out, "1 visual elements detected")
}
