//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var (
	sampleInput  = filepath.Join("internal", "transcript", "testdata", "sample.jsonl")
	sampleOutput = filepath.Join(binDir, "sample.md")
)

// Sample builds the CLI and converts the sample transcript into bin/sample.md.
func Sample() error {
	mg.Deps(Build)

	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "convert", sampleInput, sampleOutput); err != nil {
		return fmt.Errorf("converting sample: %w", err)
	}
	fmt.Printf("Wrote %s\n", sampleOutput)
	return nil
}
