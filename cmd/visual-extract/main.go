package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/visual-extract/internal/config"
	"github.com/ironsheep/visual-extract/internal/ocr"
	"github.com/ironsheep/visual-extract/internal/ocr/tesseract"
	"github.com/ironsheep/visual-extract/internal/ocr/vision"
	"github.com/ironsheep/visual-extract/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("visual-extract %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if cfg.Debug() {
		log.Printf("visual-extract v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	extractor, closeExtractor, err := newExtractor(ctx, cfg.OCR)
	if err != nil {
		log.Fatalf("OCR setup failed: %v", err)
	}
	defer closeExtractor()

	log.Printf("OCR backend: %s", cfg.OCR.Backend)

	srv := server.New(cfg, extractor)
	if err := srv.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		return
	}
	log.Println("Server stopped")
}

// newExtractor builds the configured OCR backend and its cleanup func.
func newExtractor(ctx context.Context, cfg config.OCRConfig) (ocr.Extractor, func(), error) {
	switch cfg.Backend {
	case ocr.BackendVision:
		e, err := vision.New(ctx)
		if err != nil {
			return nil, nil, err
		}
		return e, func() {
			if err := e.Close(); err != nil {
				log.Printf("Closing Vision client: %v", err)
			}
		}, nil
	case ocr.BackendTesseract:
		log.Printf("Tesseract %s, language %s", tesseract.Version(), cfg.Language)
		return tesseract.New(tesseract.Options{
			Language:       cfg.Language,
			TessdataPrefix: cfg.TessdataPrefix,
		}), func() {}, nil
	case ocr.BackendNone:
		return ocr.Nop, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown OCR backend %q", cfg.Backend)
	}
}

func printHelp() {
	fmt.Println("visual-extract - extract text and visual elements from uploaded images")
	fmt.Println()
	fmt.Println("Usage: visual-extract [-config file.yaml]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config FILE     Load settings from a YAML file")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from .env):")
	fmt.Println("  VISUAL_EXTRACT_ADDR=:5000               Listen address")
	fmt.Println("  VISUAL_EXTRACT_UPLOAD_DIR=uploads       Upload and segment directory")
	fmt.Println("  VISUAL_EXTRACT_OCR_BACKEND=vision       vision, tesseract or none")
	fmt.Println("  VISUAL_EXTRACT_OCR_LANGUAGE=eng         Tesseract language")
	fmt.Println("  TESSDATA_PREFIX=                        Tesseract data directory")
	fmt.Println("  VISUAL_EXTRACT_LOG_LEVEL=info           Set to debug for per-segment logs")
	fmt.Println("  VISUAL_EXTRACT_CORS_ORIGINS=*           Origins allowed on /uploads")
	fmt.Println("  VISUAL_EXTRACT_MAX_UPLOAD_MB=32         Upload size limit")
	fmt.Println()
	fmt.Println("The vision backend uses Google Cloud application default credentials.")
}
