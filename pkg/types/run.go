// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionResult summarizes one pass over a transcript.
type ConversionResult struct {
	// Lines is the number of input lines read, blank lines included.
	Lines int `json:"lines" yaml:"lines"`

	// Records is the number of lines that decoded as JSON.
	Records int `json:"records" yaml:"records"`

	// Skipped is the number of lines dropped as invalid JSON.
	Skipped int `json:"skipped" yaml:"skipped"`

	// Fragments is the number of formatted messages in the document.
	Fragments int `json:"fragments" yaml:"fragments"`

	// Characters is the size of the document body in code points.
	Characters int `json:"characters" yaml:"characters"`

	// Truncated is set when the budget stopped the conversion early.
	Truncated bool `json:"truncated" yaml:"truncated"`
}

// Run is one archived conversion.
type Run struct {
	ID     string `json:"id" yaml:"id"`
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`

	// InputSHA256 is the hex digest of the input file, empty for stdin.
	InputSHA256 string `json:"input_sha256,omitempty" yaml:"input_sha256,omitempty"`

	ConversionResult `yaml:",inline"`

	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`
}
