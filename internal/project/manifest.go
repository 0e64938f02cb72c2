// Package project loads the keel.toml manifest and locates the project
// root.
package project

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is the parsed keel.toml.
type Manifest struct {
	Package   PackageSection   `toml:"package"`
	Inference InferenceSection `toml:"inference"`
	Emit      EmitSection      `toml:"emit"`
}

// PackageSection names the project and lists its input payloads.
type PackageSection struct {
	Name   string   `toml:"name"`
	Inputs []string `toml:"inputs"`
}

// InferenceSection tunes the hint solver.
type InferenceSection struct {
	// MaxPasses overrides the solver pass ceiling when positive.
	MaxPasses int `toml:"max_passes"`
	// MutatingPrefixes extends the name heuristic's prefix list.
	MutatingPrefixes []string `toml:"mutating_prefixes"`
	// MutatingSuffixes extends the name heuristic's suffix list.
	MutatingSuffixes []string `toml:"mutating_suffixes"`
}

// EmitSection tunes fragment rendering.
type EmitSection struct {
	// Indent is the indentation unit for hoisted bindings; four spaces
	// when empty.
	Indent string `toml:"indent"`
}

// Load parses a keel.toml manifest.
func Load(path string) (Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Manifest{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(m.Package.Name) == "" {
		return Manifest{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if m.Inference.MaxPasses < 0 {
		return Manifest{}, fmt.Errorf("%s: [inference].max_passes must not be negative", path)
	}
	seen := make(map[string]bool, len(m.Package.Inputs))
	for _, in := range m.Package.Inputs {
		if seen[in] {
			return Manifest{}, fmt.Errorf("%s: input %q listed twice", path, in)
		}
		seen[in] = true
	}
	return m, nil
}

// Discover finds and loads the manifest governing startDir. The bool
// reports whether a manifest exists at all.
func Discover(startDir string) (Manifest, string, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return Manifest{}, "", ok, err
	}
	m, err := Load(path)
	if err != nil {
		return Manifest{}, path, true, err
	}
	return m, path, true, nil
}
