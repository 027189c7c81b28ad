// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/transcript-md/pkg/types"
)

// WriteYAML writes runs to w as a YAML sequence.
func WriteYAML(w io.Writer, runs []types.Run) error {
	if runs == nil {
		runs = []types.Run{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// WriteJSON writes runs to w as an indented JSON array.
func WriteJSON(w io.Writer, runs []types.Run) error {
	if runs == nil {
		runs = []types.Run{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
