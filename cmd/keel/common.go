package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"keel/internal/driver"
	"keel/internal/project"
)

// runSetup is the resolved flag and manifest state shared by the
// analysis commands.
type runSetup struct {
	manifest project.Manifest
	root     string
	opts     driver.Options
	names    []string

	quiet   bool
	timings bool
	ui      uiMode
}

// setupRun resolves persistent flags, locates the manifest, and loads
// the input payloads. Positional args override the manifest's input
// list.
func setupRun(cmd *cobra.Command, args []string) (*runSetup, error) {
	flags := cmd.Flags()

	colorMode, _ := flags.GetString("color")
	if err := applyColorMode(colorMode); err != nil {
		return nil, err
	}
	uiValue, _ := flags.GetString("ui")
	mode, err := readUIMode(uiValue)
	if err != nil {
		return nil, err
	}

	rc := &runSetup{ui: mode}
	rc.quiet, _ = flags.GetBool("quiet")
	rc.timings, _ = flags.GetBool("timings")
	maxDiag, _ := flags.GetInt("max-diagnostics")
	maxPasses, _ := flags.GetInt("max-passes")
	noCache, _ := flags.GetBool("no-cache")

	projectDir, _ := flags.GetString("project")
	if projectDir == "" {
		projectDir = "."
	}
	manifest, manifestPath, found, err := project.Discover(projectDir)
	if err != nil {
		return nil, err
	}
	if found {
		rc.manifest = manifest
		rc.root = filepath.Dir(manifestPath)
	}

	inputs, names, err := resolveInputs(rc, args)
	if err != nil {
		return nil, err
	}
	rc.names = names

	if maxPasses <= 0 {
		maxPasses = rc.manifest.Inference.MaxPasses
	}
	heuristic := driver.ExtendHeuristic(
		rc.manifest.Inference.MutatingPrefixes,
		rc.manifest.Inference.MutatingSuffixes,
	)

	rc.opts = driver.Options{
		Inputs:         inputs,
		MaxPasses:      maxPasses,
		Heuristic:      &heuristic,
		NoCache:        noCache,
		MaxDiagnostics: maxDiag,
	}
	if !noCache {
		// A broken cache dir degrades to uncached analysis.
		if cache, err := driver.OpenDiskCache("keel"); err == nil {
			rc.opts.Cache = cache
		}
	}
	return rc, nil
}

func resolveInputs(rc *runSetup, args []string) ([]driver.Input, []string, error) {
	if len(args) > 0 {
		inputs := make([]driver.Input, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to read input %q: %w", path, err)
			}
			inputs = append(inputs, driver.Input{Name: path, Data: data})
		}
		return inputs, args, nil
	}
	if rc.root == "" {
		return nil, nil, fmt.Errorf("no %s found and no input payloads given", project.ManifestName)
	}
	if len(rc.manifest.Package.Inputs) == 0 {
		return nil, nil, fmt.Errorf("manifest %q lists no inputs", filepath.Join(rc.root, project.ManifestName))
	}
	inputs, err := driver.LoadInputs(rc.root, rc.manifest.Package.Inputs)
	if err != nil {
		return nil, nil, err
	}
	return inputs, rc.manifest.Package.Inputs, nil
}

func applyColorMode(mode string) error {
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func useColor() bool {
	return !color.NoColor
}
