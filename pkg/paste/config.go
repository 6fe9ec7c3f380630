// Package paste sanitizes untrusted HTML into fragments that conform to the
// editor's document schema. Rich paste keeps schema formatting; text paste
// additionally reduces the fragment to its unformatted equivalent.
package paste

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Default values for Config.
const (
	DefaultTabWidth     = 4
	DefaultMinImageSize = 20
	DefaultImageClass   = "resizable"
)

// Config defines the tunable behavior of the sanitizer. The tag tables
// themselves live in Schema and are not configurable.
type Config struct {
	// Screen runs the security screen over raw input before parsing. It
	// removes event handler attributes, unsafe URL schemes and script-like
	// elements.
	Screen bool `json:"screen" yaml:"screen" mapstructure:"screen"`

	// Verify checks the rich paste invariants on every result and reports
	// violations to the host.
	Verify bool `json:"verify" yaml:"verify" mapstructure:"verify"`

	// TabWidth is the number of non-breaking spaces a literal tab expands to.
	TabWidth int `json:"tab_width" yaml:"tab_width" mapstructure:"tab_width" validate:"min=1,max=16"`

	// MinImageSize is the smallest width or height, in pixels, given to an
	// image that has no explicit dimensions.
	MinImageSize int `json:"min_image_size" yaml:"min_image_size" mapstructure:"min_image_size" validate:"min=1"`

	// ImageClass marks images as resizable once their size is known.
	ImageClass string `json:"image_class" yaml:"image_class" mapstructure:"image_class" validate:"required"`

	// MaxInputBytes rejects larger payloads as unparseable. Zero means unlimited.
	MaxInputBytes int `json:"max_input_bytes" yaml:"max_input_bytes" mapstructure:"max_input_bytes" validate:"min=0"`

	// Debug enables per-pass debug logging.
	Debug bool `json:"debug" yaml:"debug" mapstructure:"debug"`
}

// DefaultConfig returns the configuration used by the package-level
// sanitize functions.
func DefaultConfig() *Config {
	return &Config{
		Screen:        true,
		Verify:        true,
		TabWidth:      DefaultTabWidth,
		MinImageSize:  DefaultMinImageSize,
		ImageClass:    DefaultImageClass,
		MaxInputBytes: 0,
	}
}

// PresetTrusted returns a configuration for markup produced by the editor
// itself, where the security screen is unnecessary.
func PresetTrusted() *Config {
	cfg := DefaultConfig()
	cfg.Screen = false
	return cfg
}

var validate = validator.New()

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid paste config: %w", err)
	}
	return nil
}

// Merge merges another config into this one.
// Non-zero values from other override this config. Boolean switches are
// only ever turned on by other, never off.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	merged := *c

	if other.Screen {
		merged.Screen = true
	}
	if other.Verify {
		merged.Verify = true
	}
	if other.Debug {
		merged.Debug = true
	}
	if other.TabWidth > 0 {
		merged.TabWidth = other.TabWidth
	}
	if other.MinImageSize > 0 {
		merged.MinImageSize = other.MinImageSize
	}
	if other.ImageClass != "" {
		merged.ImageClass = other.ImageClass
	}
	if other.MaxInputBytes > 0 {
		merged.MaxInputBytes = other.MaxInputBytes
	}

	return &merged
}
