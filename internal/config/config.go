package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Tracer holds all configuration for the path tracer.
type Tracer struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Collision data
	SceneDir string `yaml:"scene_dir"`

	// Search workers and result cache
	Workers   int `yaml:"workers"`
	CacheSize int `yaml:"cache_size"`

	Highlight Highlight       `yaml:"highlight"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Highlight holds cosmetic path overlay settings.
type Highlight struct {
	PathColor        string  `yaml:"path_color"`        // hex, e.g. "#0000ff"
	DestinationColor string  `yaml:"destination_color"` // hex
	BorderWidth      float64 `yaml:"border_width"`
}

// PathRGB parses PathColor.
func (h Highlight) PathRGB() (colorful.Color, error) {
	c, err := colorful.Hex(h.PathColor)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("path_color %q: %w", h.PathColor, err)
	}
	return c, nil
}

// DestinationRGB parses DestinationColor.
func (h Highlight) DestinationRGB() (colorful.Color, error) {
	c, err := colorful.Hex(h.DestinationColor)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("destination_color %q: %w", h.DestinationColor, err)
	}
	return c, nil
}

// HTTPConfig holds the serve command listener.
type HTTPConfig struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.BindAddress, h.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
// Route history is recorded only when Enabled.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// TelemetryConfig toggles OTLP trace export. Endpoint and headers come
// from the standard OTEL_* environment variables.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns Tracer config with sensible defaults.
func Default() Tracer {
	return Tracer{
		LogLevel:  "info",
		SceneDir:  "data/scenes",
		Workers:   4,
		CacheSize: 256,
		Highlight: Highlight{
			PathColor:        "#0000ff",
			DestinationColor: "#ffafaf",
			BorderWidth:      2,
		},
		HTTP: HTTPConfig{
			BindAddress: "127.0.0.1",
			Port:        8089,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "pathtracer",
			Password: "pathtracer",
			DBName:   "pathtracer",
			SSLMode:  "disable",
		},
	}
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Tracer, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and color syntax.
func (c Tracer) Validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache_size must be >= 0, got %d", c.CacheSize))
	}
	if c.Highlight.BorderWidth < 0 {
		errs = append(errs, fmt.Errorf("border_width must be >= 0, got %v", c.Highlight.BorderWidth))
	}
	if _, err := c.Highlight.PathRGB(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Highlight.DestinationRGB(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port out of range: %d", c.HTTP.Port))
	}
	return errors.Join(errs...)
}
