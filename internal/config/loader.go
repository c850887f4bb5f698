package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Defaults in Resolve.
type Config struct {
	LogLevel        string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat       string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	AdminAddr       string   `json:"admin_addr" yaml:"admin_addr" toml:"admin_addr"`
	MaxArgBytes     int64    `json:"max_arg_bytes" yaml:"max_arg_bytes" toml:"max_arg_bytes"`
	MaxHistory      int      `json:"max_history" yaml:"max_history" toml:"max_history"`
	ImageExtensions []string `json:"image_extensions" yaml:"image_extensions" toml:"image_extensions"`
	CORSEnabled     bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins     []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Defaults returns the configuration used when nothing else is given. The
// admin listener is off unless an address is configured.
func Defaults() Config {
	return Config{
		LogLevel:    "info",
		LogFormat:   "auto",
		MaxArgBytes: 1 << 30,
	}
}

// Validate rejects values the service cannot start with.
func (c Config) Validate() error {
	switch c.LogFormat {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("log_format must be auto, console or json, got %q", c.LogFormat)
	}
	if c.MaxArgBytes < 0 {
		return errors.New("max_arg_bytes must not be negative")
	}
	if c.MaxHistory < 0 {
		return errors.New("max_history must not be negative")
	}
	return nil
}

// Load reads the config file at path. The format follows the extension:
// .yaml/.yml, .json or .toml. Fields absent from the file stay zero.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := Decode(path, b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Decode unmarshals b into v using the format implied by name's extension.
// Model manifests share this with the config file.
func Decode(name string, b []byte, v any) error {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, v)
	case ".json":
		return json.Unmarshal(b, v)
	case ".toml":
		return toml.Unmarshal(b, v)
	default:
		return fmt.Errorf("unsupported extension: %q", ext)
	}
}

// merge overlays the non-zero fields of o onto c.
func (c *Config) merge(o Config) {
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.AdminAddr != "" {
		c.AdminAddr = o.AdminAddr
	}
	if o.MaxArgBytes != 0 {
		c.MaxArgBytes = o.MaxArgBytes
	}
	if o.MaxHistory != 0 {
		c.MaxHistory = o.MaxHistory
	}
	if len(o.ImageExtensions) > 0 {
		c.ImageExtensions = o.ImageExtensions
	}
	if o.CORSEnabled {
		c.CORSEnabled = true
	}
	if len(o.CORSOrigins) > 0 {
		c.CORSOrigins = o.CORSOrigins
	}
}
