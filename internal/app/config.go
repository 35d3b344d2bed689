package app

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"120s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"120s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// Artifact layout. Generated HTML references images through the
	// sibling relative path ../images/, so the three directories must
	// stay siblings for served reports to render.
	DataDir    string `envconfig:"DATA_DIR" default:"db"`
	ImagesDir  string `envconfig:"IMAGES_DIR" default:"images"`
	ReportsDir string `envconfig:"REPORTS_DIR" default:"reports"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EnsureDirs creates the data, images and reports directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.ImagesDir, c.ReportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
