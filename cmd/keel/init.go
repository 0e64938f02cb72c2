package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"keel/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new keel project",
	Long: `Initialize a new keel project by creating a project manifest (keel.toml)
and a sample program payload (main.json). If [path|name] is omitted,
initializes the current directory. If a non-existing name is provided, a
directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "keel-project"
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(buildDefaultManifest(name)), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	payloadPath := filepath.Join(target, "main.json")
	createdPayload := false
	if _, err := os.Stat(payloadPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(payloadPath, []byte(defaultPayload()), 0o600); err != nil {
			return fmt.Errorf("failed to write main.json: %w", err)
		}
		createdPayload = true
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Initialized keel project in %s\n", rel)
	fmt.Fprintf(os.Stdout, "  - %s\n", project.ManifestName)
	if createdPayload {
		fmt.Fprintf(os.Stdout, "  - main.json\n")
	} else {
		fmt.Fprintf(os.Stdout, "  - main.json (existing)\n")
	}
	return nil
}

func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`# keel project manifest
[package]
name = "%s"
inputs = ["main.json"]

[inference]
max_passes = 12
`, name)
}

// defaultPayload is a tiny decoded program: a greeter that only reads
// its parameter, so a first run has a hint to infer.
func defaultPayload() string {
	return `{
  "schema": 1,
  "package": "hello",
  "funcs": [
    {"name": "shout",
     "params": [{"name": "text", "binding": 1, "type": {"k": "string"}}],
     "body": {"stmts": [
       {"kind": "expr", "expr": {"kind": "method", "callee": "len",
         "recv": {"kind": "var", "name": "text", "binding": 1}}}
     ]}},
    {"name": "main",
     "body": {"stmts": [
       {"kind": "let", "name": "greeting", "binding": 1,
        "value": {"kind": "lit", "lit": "str", "str": "hello, keel"}},
       {"kind": "expr", "expr": {"kind": "call", "callee": "shout",
         "args": [{"kind": "var", "name": "greeting", "binding": 1}]}}
     ]}}
  ]
}
`
}
