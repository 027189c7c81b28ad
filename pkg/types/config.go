// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

const (
	// DefaultMaxCharacters keeps the document body under GitHub's 65535
	// character comment limit with room for the preamble and notice.
	DefaultMaxCharacters = 60000

	// DefaultToolInputLimit caps the rendered input of a single tool call.
	DefaultToolInputLimit = 500

	// DefaultToolResultLimit caps the rendered payload of a single tool result.
	DefaultToolResultLimit = 1000

	// DefaultArchivePath is where conversion runs are recorded when the
	// archive is enabled.
	DefaultArchivePath = ".transcript-md/history.db"
)

// ConversionConfig holds the size limits applied while converting a transcript.
// Zero values select the defaults.
type ConversionConfig struct {
	// MaxCharacters is the budget for the document body, in characters
	// (Unicode code points). Default 60000.
	MaxCharacters int `json:"max_characters" yaml:"max_characters" mapstructure:"max_characters"`

	// ToolInputLimit truncates serialized tool_use input (default 500).
	ToolInputLimit int `json:"tool_input_limit" yaml:"tool_input_limit" mapstructure:"tool_input_limit"`

	// ToolResultLimit truncates tool_result payloads (default 1000).
	ToolResultLimit int `json:"tool_result_limit" yaml:"tool_result_limit" mapstructure:"tool_result_limit"`
}

// WithDefaults returns a copy of c with zero limits replaced by the defaults.
func (c ConversionConfig) WithDefaults() ConversionConfig {
	if c.MaxCharacters == 0 {
		c.MaxCharacters = DefaultMaxCharacters
	}
	if c.ToolInputLimit == 0 {
		c.ToolInputLimit = DefaultToolInputLimit
	}
	if c.ToolResultLimit == 0 {
		c.ToolResultLimit = DefaultToolResultLimit
	}
	return c
}

// Validate reports an error for negative limits. Zero limits are accepted
// and select the defaults.
func (c ConversionConfig) Validate() error {
	for _, l := range c.limits() {
		if l.value < 0 {
			return fmt.Errorf("%s must not be negative, got %d", l.name, l.value)
		}
	}
	return nil
}

// ValidatePositive reports an error for any limit that is not positive.
// Settings merged from flags, environment and config file always carry a
// value, so a zero there is rejected instead of meaning the default.
func (c ConversionConfig) ValidatePositive() error {
	for _, l := range c.limits() {
		if l.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", l.name, l.value)
		}
	}
	return nil
}

type limit struct {
	name  string
	value int
}

func (c ConversionConfig) limits() []limit {
	return []limit{
		{"max_characters", c.MaxCharacters},
		{"tool_input_limit", c.ToolInputLimit},
		{"tool_result_limit", c.ToolResultLimit},
	}
}

// ArchiveConfig controls the optional SQLite history of conversion runs.
type ArchiveConfig struct {
	// Enabled records every successful conversion when true.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file (default .transcript-md/history.db).
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups all settings read from the config file, environment and flags.
type Config struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Archive    ArchiveConfig    `json:"archive" yaml:"archive" mapstructure:"archive"`
}
