// Package config loads runtime settings for the shape servers.
//
// Settings are layered, later sources winning:
//
//  1. Built-in defaults (Default or DefaultMobile)
//  2. An optional YAML file
//  3. A .env file in the working directory, if present; it never overrides
//     variables already set in the environment
//  4. SHAPES_* environment variables
//
// The merged result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/shape-vision/internal/detection"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SHAPES_"

// Config holds every tunable of the servers.
type Config struct {
	Detection detection.Params  `yaml:"detection" json:"detector_params"`
	Limits    detection.Options `yaml:"limits" json:"limits"`

	// HTTPAddr is the listen address of the HTTP backend.
	HTTPAddr string `yaml:"http_addr" json:"http_addr"`

	// LogLevel is "info" or "debug".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// QueueSize bounds the frames waiting for detection in the HTTP backend.
	QueueSize int `yaml:"queue_size" json:"queue_size"`

	// OCRLanguage is the Tesseract language used for label reading.
	OCRLanguage string `yaml:"ocr_language" json:"ocr_language"`

	// TessdataPrefix overrides Tesseract's data directory when set.
	TessdataPrefix string `yaml:"tessdata_prefix" json:"tessdata_prefix,omitempty"`
}

// Default returns the settings used by the MCP server and desktop tools.
func Default() Config {
	return Config{
		Detection:   detection.DefaultParams(),
		HTTPAddr:    ":8000",
		LogLevel:    "info",
		QueueSize:   16,
		OCRLanguage: "eng",
	}
}

// DefaultMobile returns the settings used by the HTTP backend.
func DefaultMobile() Config {
	c := Default()
	c.Detection = detection.MobileParams()
	c.Limits = detection.MobileOptions()
	return c
}

// Debug reports whether debug logging is enabled.
func (c Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := c.Detection.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch {
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalid, c.QueueSize)
	case c.HTTPAddr == "":
		return fmt.Errorf("%w: http_addr must not be empty", ErrInvalid)
	}
	switch strings.ToLower(c.LogLevel) {
	case "info", "debug":
	default:
		return fmt.Errorf("%w: log_level must be info or debug, got %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// Load merges defaults, the YAML file at path (skipped when path is empty),
// a .env file and the environment, then validates the result.
func Load(path string, defaults Config) (*Config, error) {
	cfg := defaults

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnvFile exports the variables in the given dotenv file without
// overriding ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) {
	d := &c.Detection
	d.MinContourArea = getEnvAsFloat("MIN_CONTOUR_AREA", d.MinContourArea)
	d.MaxContourArea = getEnvAsFloat("MAX_CONTOUR_AREA", d.MaxContourArea)
	d.BlurKernelSize = getEnvAsInt("BLUR_KERNEL_SIZE", d.BlurKernelSize)
	d.MorphKernelSize = getEnvAsInt("MORPH_KERNEL_SIZE", d.MorphKernelSize)
	d.Threshold = getEnvAsInt("THRESHOLD", d.Threshold)
	d.Workers = getEnvAsInt("WORKERS", d.Workers)

	l := &c.Limits
	l.MaxObjects = getEnvAsInt("MAX_OBJECTS", l.MaxObjects)
	l.MinColorConfidence = getEnvAsFloat("CONFIDENCE_THRESHOLD", l.MinColorConfidence)
	l.MaxWidth = getEnvAsInt("MAX_WIDTH", l.MaxWidth)

	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.QueueSize = getEnvAsInt("QUEUE_SIZE", c.QueueSize)
	c.OCRLanguage = getEnv("OCR_LANGUAGE", c.OCRLanguage)

	// Tesseract's own variable is honoured as well.
	c.TessdataPrefix = getEnv("TESSDATA_PREFIX", os.Getenv("TESSDATA_PREFIX"), c.TessdataPrefix)
}

// getEnv returns the first non-empty value among SHAPES_<key> and the
// fallbacks.
func getEnv(key string, fallbacks ...string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	for _, f := range fallbacks {
		if f != "" {
			return f
		}
	}
	return ""
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
