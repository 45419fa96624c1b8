package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Output formats a conversion can produce.
const (
	FormatPNG = "png" // first mipmap of every image, embedded files kept as is
	FormatGIF = "gif" // animated textures as GIF, static ones fall back to png
	FormatDDS = "dds" // block-compressed mip chains without decompression
	FormatRaw = "raw" // zstd raw pixel dumps
)

// Config represents the batch conversion configuration
type Config struct {
	Format           string       `yaml:"format"`
	Recursive        bool         `yaml:"recursive"`
	Overwrite        bool         `yaml:"overwrite"`
	AllMipmaps       bool         `yaml:"all_mipmaps"`       // write every mipmap instead of only the first
	Thumbnail        int          `yaml:"thumbnail"`         // max side in pixels for png output, 0 keeps full size
	CompressionLevel int          `yaml:"compression_level"` // zstd level for raw output
	Info             bool         `yaml:"info"`              // write a .json report next to each output
	LogLevel         string       `yaml:"log_level"`         // debug, info, warn, error
	Limits           LimitsConfig `yaml:"limits"`
}

// LimitsConfig overrides the decoder safety ceilings. Zero keeps the default.
type LimitsConfig struct {
	MaxImages      int `yaml:"max_images"`
	MaxMipmaps     int `yaml:"max_mipmaps"`
	MaxMipmapBytes int `yaml:"max_mipmap_bytes"`
	MaxFrames      int `yaml:"max_frames"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Format:           FormatPNG,
		Recursive:        true,
		CompressionLevel: 1,
		LogLevel:         "info",
	}
}

// Load reads and parses a YAML configuration file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML configuration data on top of the defaults
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
