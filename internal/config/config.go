package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxholm/foxholm/internal/imaging"
	"github.com/foxholm/foxholm/internal/processing"
)

// Config is the complete application configuration. Values come from
// defaults, an optional YAML file and the environment, in rising order of
// precedence.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Site       SiteConfig       `mapstructure:"site"`
	Images     ImagesConfig     `mapstructure:"images"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Health     HealthConfig     `mapstructure:"health"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxBodyBytes caps request bodies; base64 inflates uploads by a third.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// SiteConfig describes the public deployment.
type SiteConfig struct {
	Domain      string `mapstructure:"domain"`
	Environment string `mapstructure:"environment"`
}

// ImagesConfig bounds accepted uploads.
type ImagesConfig struct {
	MaxBytes           int64    `mapstructure:"max_bytes"`
	MaxDimension       int      `mapstructure:"max_dimension"`
	AllowedTypes       []string `mapstructure:"allowed_types"`
	MaxSourceDimension int      `mapstructure:"max_source_dimension"`
}

// ProcessingConfig tunes upstream requests.
type ProcessingConfig struct {
	MaxOutputDimension int `mapstructure:"max_output_dimension"`
	Steps              int `mapstructure:"steps"`
}

// GatewayConfig selects and configures the image provider.
type GatewayConfig struct {
	Provider  string         `mapstructure:"provider"`
	Timeout   time.Duration  `mapstructure:"timeout"`
	TraceFile string         `mapstructure:"trace_file"`
	Together  TogetherConfig `mapstructure:"together"`
	Gemini    GeminiConfig   `mapstructure:"gemini"`
}

type TogetherConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxAge         int      `mapstructure:"max_age"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// MetricsConfig contains Prometheus exporter configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HealthConfig contains health endpoint configuration.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Production reports whether the site runs in production.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Site.Environment, "production")
}

// APIKey returns the credential of the selected provider.
func (c *Config) APIKey() string {
	switch c.Gateway.Provider {
	case ProviderGemini:
		return c.Gateway.Gemini.APIKey
	default:
		return c.Gateway.Together.APIKey
	}
}

// ImageLimits returns the upload policy.
func (c *Config) ImageLimits() imaging.Limits {
	return imaging.Limits{
		MaxBytes:     c.Images.MaxBytes,
		MaxDimension: c.Images.MaxDimension,
		AllowedTypes: append([]string(nil), c.Images.AllowedTypes...),
	}
}

// ProcessorConfig returns the pipeline settings.
func (c *Config) ProcessorConfig() processing.Config {
	cfg := processing.DefaultConfig()
	cfg.Limits = c.ImageLimits()
	cfg.MaxSourceDimension = c.Images.MaxSourceDimension
	cfg.MaxOutputDimension = c.Processing.MaxOutputDimension
	if c.Processing.Steps > 0 {
		cfg.Steps = c.Processing.Steps
	}
	return cfg
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.Site.Domain) == "" {
		return fmt.Errorf("site.domain is required")
	}
	switch c.Gateway.Provider {
	case ProviderTogether, ProviderGemini:
	default:
		return fmt.Errorf("gateway.provider %q is not supported (use %s or %s)", c.Gateway.Provider, ProviderTogether, ProviderGemini)
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive")
	}
	if c.Images.MaxBytes <= 0 {
		return fmt.Errorf("images.max_bytes must be positive")
	}
	return nil
}
