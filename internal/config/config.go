package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// CountyShapefile points at the bundled US county boundary shapefile
	// (filtered to Montana at load).
	CountyShapefile string

	// ExportDir receives timestamped export files. Defaults to the user's
	// Downloads folder, matching the historical desktop behavior.
	ExportDir string
	ExportDPI int

	// Base raster size of the interactive maps; exports scale this by
	// ExportDPI/100.
	RenderWidth  int
	RenderHeight int
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	exportDPI, err := parsePositiveInt("EXPORT_DPI", 300)
	if err != nil {
		return nil, err
	}
	renderWidth, err := parsePositiveInt("RENDER_WIDTH", 1000)
	if err != nil {
		return nil, err
	}
	renderHeight, err := parsePositiveInt("RENDER_HEIGHT", 800)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CountyShapefile: envOrDefault("COUNTY_SHAPEFILE", "shapefiles/cb_2021_us_county_5m.shp"),
		ExportDir:       envOrDefault("EXPORT_DIR", defaultExportDir()),
		ExportDPI:       exportDPI,
		RenderWidth:     renderWidth,
		RenderHeight:    renderHeight,
	}

	if cfg.CountyShapefile == "" {
		return nil, errors.New("COUNTY_SHAPEFILE is required")
	}
	if cfg.ExportDir == "" {
		return nil, errors.New("EXPORT_DIR is required")
	}

	return cfg, nil
}

func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "exports"
	}
	return filepath.Join(home, "Downloads")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
