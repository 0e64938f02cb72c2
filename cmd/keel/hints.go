package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"keel/internal/infer"
)

var hintsJSON bool

func init() {
	hintsCmd.Flags().BoolVar(&hintsJSON, "json", false, "emit inferred signatures as JSON")
}

var hintsCmd = &cobra.Command{
	Use:   "hints [inputs...]",
	Short: "Show the inferred signature hints",
	Long: `Hints prints the converged passing convention for every function
parameter and receiver, in qualified-name order.`,
	RunE: runHints,
}

type hintsSigJSON struct {
	Func     string   `json:"func"`
	Receiver string   `json:"receiver,omitempty"`
	Params   []string `json:"params"`
}

func runHints(cmd *cobra.Command, args []string) error {
	rc, err := setupRun(cmd, args)
	if err != nil {
		return err
	}
	outcome, runErr := runAnalysis(cmd, rc, false)
	if outcome == nil {
		return runErr
	}
	printDiagnostics(rc, outcome, false)
	if runErr != nil {
		return runErr
	}

	exports := outcome.Result.Registry.Export()
	if hintsJSON {
		out := make([]hintsSigJSON, 0, len(exports))
		for _, exp := range exports {
			entry := hintsSigJSON{Func: exp.Qual, Params: make([]string, len(exp.Params))}
			if exp.Receiver.Resolved() {
				entry.Receiver = exp.Receiver.String()
			}
			for i, h := range exp.Params {
				entry.Params[i] = h.String()
			}
			out = append(out, entry)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, exp := range exports {
		parts := make([]string, 0, len(exp.Params)+1)
		if exp.Receiver.Resolved() {
			parts = append(parts, receiverLabel(exp.Receiver))
		}
		for _, h := range exp.Params {
			parts = append(parts, h.String())
		}
		fmt.Fprintf(os.Stdout, "%s(%s)\n", exp.Qual, strings.Join(parts, ", "))
	}
	return nil
}

func receiverLabel(h infer.Hint) string {
	switch h {
	case infer.HintSharedRef:
		return "&self"
	case infer.HintExclusiveRef:
		return "&mut self"
	default:
		return "self"
	}
}
