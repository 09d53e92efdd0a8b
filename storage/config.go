package storage

import (
	"github.com/kbukum/liftkit/validation"
)

// Supported file formats for Save.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Default configuration values.
const (
	DefaultBasePath = "data"
	DefaultFormat   = FormatJSON
)

// Config holds storage configuration.
type Config struct {
	// BasePath is the root directory of the data files.
	BasePath string `mapstructure:"base_path" json:"base_path"`

	// Format selects the encoding used by Save: "json" or "yaml".
	Format string `mapstructure:"format" json:"format"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	return validation.New().
		Required("storage.base_path", c.BasePath).
		OneOf("storage.format", c.Format, []string{FormatJSON, FormatYAML}).
		Validate()
}
