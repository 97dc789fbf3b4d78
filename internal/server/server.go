package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ironsheep/visual-extract/internal/config"
	"github.com/ironsheep/visual-extract/internal/ocr"
	"github.com/ironsheep/visual-extract/internal/render"
)

// uploadsPrefix is the URL path stored files are served under.
const uploadsPrefix = "/uploads"

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 30 * time.Second

// Server serves the upload form, processes uploads and serves stored files.
type Server struct {
	cfg       *config.Config
	extractor ocr.Extractor
	renderer  *render.Renderer
	router    chi.Router
}

// New creates a Server. The upload directory in cfg must already exist.
func New(cfg *config.Config, extractor ocr.Extractor) *Server {
	s := &Server{
		cfg:       cfg,
		extractor: extractor,
		renderer:  render.New(cfg.UploadDir, uploadsPrefix),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Default(), NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/", s.handleUpload)

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		}))

		r.Get(uploadsPrefix+"/{filename}", s.handleUploads)
		r.Head(uploadsPrefix+"/{filename}", s.handleUploads)
	})

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is canceled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
