package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDefaults_Valid(t *testing.T) {
	for name, c := range map[string]Config{"default": Default(), "mobile": DefaultMobile()} {
		if err := c.Validate(); err != nil {
			t.Errorf("%s config invalid: %v", name, err)
		}
	}
	m := DefaultMobile()
	if m.Limits.MaxObjects != 10 || m.Limits.MinColorConfidence != 0.3 || m.Limits.MaxWidth != 640 {
		t.Errorf("mobile limits: got %+v", m.Limits)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("", Default())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Detection.MinContourArea != 500 {
		t.Errorf("MinContourArea: got %v, want 500", cfg.Detection.MinContourArea)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "shapes.yaml", `
detection:
  min_contour_area: 800
  blur_kernel_size: 7
limits:
  max_objects: 4
log_level: debug
`)

	cfg, err := Load(path, Default())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Detection.MinContourArea != 800 || cfg.Detection.BlurKernelSize != 7 {
		t.Errorf("detection not overridden: %+v", cfg.Detection)
	}
	if cfg.Detection.MaxContourArea != 50000 {
		t.Errorf("unset field lost its default: %v", cfg.Detection.MaxContourArea)
	}
	if cfg.Limits.MaxObjects != 4 {
		t.Errorf("MaxObjects: got %d, want 4", cfg.Limits.MaxObjects)
	}
	if !cfg.Debug() {
		t.Error("Debug should be enabled")
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "shapes.yaml", "detection:\n  min_contour_area: 800\nhttp_addr: \":9000\"\n")
	t.Setenv("SHAPES_MIN_CONTOUR_AREA", "1200")
	t.Setenv("SHAPES_CONFIDENCE_THRESHOLD", "0.45")
	t.Setenv("SHAPES_WORKERS", "not-a-number")

	cfg, err := Load(path, Default())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Detection.MinContourArea != 1200 {
		t.Errorf("MinContourArea: got %v, want 1200", cfg.Detection.MinContourArea)
	}
	if cfg.Limits.MinColorConfidence != 0.45 {
		t.Errorf("MinColorConfidence: got %v, want 0.45", cfg.Limits.MinColorConfidence)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr: got %s", cfg.HTTPAddr)
	}
	if cfg.Detection.Workers != Default().Detection.Workers {
		t.Errorf("malformed env value should be ignored, got %d workers", cfg.Detection.Workers)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load("/nonexistent/shapes.yaml", Default()); err == nil {
		t.Error("missing explicit config file should fail")
	}

	bad := writeFile(t, "bad.yaml", "detection: [unclosed")
	if _, err := Load(bad, Default()); err == nil {
		t.Error("malformed YAML should fail")
	}

	invalid := writeFile(t, "invalid.yaml", "detection:\n  min_contour_area: 9000\n  max_contour_area: 100\n")
	_, err := Load(invalid, Default())
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad detection", func(c *Config) { c.Detection.BlurKernelSize = 0 }},
		{"negative max objects", func(c *Config) { c.Limits.MaxObjects = -1 }},
		{"confidence above 1", func(c *Config) { c.Limits.MinColorConfidence = 1.5 }},
		{"negative max width", func(c *Config) { c.Limits.MaxWidth = -640 }},
		{"zero queue", func(c *Config) { c.QueueSize = 0 }},
		{"empty addr", func(c *Config) { c.HTTPAddr = "" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}

	const key = "SHAPES_TEST_DOTENV_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })
	path := writeFile(t, "test.env", key+"=from-file\n")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Errorf("%s: got %q, want from-file", key, got)
	}
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	const key = "SHAPES_TEST_DOTENV_KEEP"
	t.Setenv(key, "from-env")
	path := writeFile(t, "test.env", key+"=from-file\n")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	if got := os.Getenv(key); got != "from-env" {
		t.Errorf("%s: got %q, want from-env", key, got)
	}
}
