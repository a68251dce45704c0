//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract builds the CLI and runs a full extraction with the configured
// input and output files.
func Extract() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "extract")
}

// Demo builds the CLI and runs the three built-in sample narratives.
func Demo() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "demo")
}
