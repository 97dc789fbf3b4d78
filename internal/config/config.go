// Package config loads service settings.
//
// Sources are applied in order, later ones winning: built-in defaults, an
// optional YAML file, a .env file in the working directory, and finally the
// process environment. Variables already present in the environment are not
// overridden by the .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/visual-extract/internal/ocr"
)

// Environment variable names.
const (
	EnvAddr           = "VISUAL_EXTRACT_ADDR"
	EnvUploadDir      = "VISUAL_EXTRACT_UPLOAD_DIR"
	EnvOCRBackend     = "VISUAL_EXTRACT_OCR_BACKEND"
	EnvOCRLanguage    = "VISUAL_EXTRACT_OCR_LANGUAGE"
	EnvTessdataPrefix = "TESSDATA_PREFIX"
	EnvLogLevel       = "VISUAL_EXTRACT_LOG_LEVEL"
	EnvCORSOrigins    = "VISUAL_EXTRACT_CORS_ORIGINS"
	EnvMaxUploadMB    = "VISUAL_EXTRACT_MAX_UPLOAD_MB"
)

// Config holds the service settings.
type Config struct {
	Addr        string    `yaml:"addr"`
	UploadDir   string    `yaml:"upload_dir"`
	LogLevel    string    `yaml:"log_level"`
	CORSOrigins []string  `yaml:"cors_origins"`
	MaxUploadMB int64     `yaml:"max_upload_mb"`
	OCR         OCRConfig `yaml:"ocr"`
}

// OCRConfig selects and tunes the text extraction backend.
type OCRConfig struct {
	Backend        string `yaml:"backend"`
	Language       string `yaml:"language"`
	TessdataPrefix string `yaml:"tessdata_prefix"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Addr:        ":5000",
		UploadDir:   "uploads",
		LogLevel:    "info",
		CORSOrigins: []string{"*"},
		MaxUploadMB: 32,
		OCR: OCRConfig{
			Backend:  ocr.BackendVision,
			Language: "eng",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), the given .env files (".env" when none are named; missing
// files are ignored) and the environment, then validates it.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Addr, EnvAddr)
	setString(&c.UploadDir, EnvUploadDir)
	setString(&c.LogLevel, EnvLogLevel)
	setString(&c.OCR.Backend, EnvOCRBackend)
	setString(&c.OCR.Language, EnvOCRLanguage)
	setString(&c.OCR.TessdataPrefix, EnvTessdataPrefix)

	if v := os.Getenv(EnvCORSOrigins); v != "" {
		c.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
	}

	if v := os.Getenv(EnvMaxUploadMB); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxUploadMB, v, err)
		}
		c.MaxUploadMB = n
	}
	return nil
}

// setString overwrites *dst with the variable's value when it is set and
// non-empty.
func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate normalizes the OCR backend and log level and rejects settings the
// service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr must not be empty")
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		return errors.New("upload_dir must not be empty")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}

	backend, err := ocr.ParseBackend(c.OCR.Backend)
	if err != nil {
		return err
	}
	c.OCR.Backend = backend

	switch level := strings.ToLower(c.LogLevel); level {
	case "debug", "info":
		c.LogLevel = level
	default:
		return fmt.Errorf("unknown log_level %q (want debug or info)", c.LogLevel)
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
