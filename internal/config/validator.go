package config

import (
	"fmt"
	"strings"

	"github.com/DataDog/zstd"
)

// Validate checks if the configuration is valid
func Validate(cfg *Config) error {
	cfg.Format = strings.ToLower(cfg.Format)
	switch cfg.Format {
	case FormatPNG, FormatGIF, FormatDDS, FormatRaw:
	case "":
		cfg.Format = FormatPNG
	default:
		return fmt.Errorf("format must be one of png, gif, dds, raw, got %q", cfg.Format)
	}

	if cfg.Thumbnail < 0 {
		return fmt.Errorf("thumbnail must be >= 0")
	}

	if cfg.CompressionLevel == 0 {
		cfg.CompressionLevel = zstd.BestSpeed
	}
	if cfg.CompressionLevel < zstd.BestSpeed || cfg.CompressionLevel > zstd.BestCompression {
		return fmt.Errorf("compression_level must be between %d and %d", zstd.BestSpeed, zstd.BestCompression)
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
		cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	case "":
		cfg.LogLevel = "info"
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}

	if err := ValidateLimits(cfg.Limits); err != nil {
		return fmt.Errorf("limits validation failed: %w", err)
	}

	return nil
}

// ValidateLimits rejects negative ceilings
func ValidateLimits(l LimitsConfig) error {
	fields := []struct {
		name  string
		value int
	}{
		{"max_images", l.MaxImages},
		{"max_mipmaps", l.MaxMipmaps},
		{"max_mipmap_bytes", l.MaxMipmapBytes},
		{"max_frames", l.MaxFrames},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", f.name, f.value)
		}
	}
	return nil
}
