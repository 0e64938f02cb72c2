package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"keel/internal/emit"
	"keel/internal/plan"
)

var (
	planJSON    bool
	planExplain bool
)

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "emit planned sites as JSON")
	planCmd.Flags().BoolVar(&planExplain, "explain", false, "explain why each clone was planned")
}

var planCmd = &cobra.Command{
	Use:   "plan [inputs...]",
	Short: "List the planned per-site corrections",
	Long: `Plan prints every access site the planner corrected: the rendered
expression after correction, the transform applied, and with --explain
the reason each clone was inserted.`,
	RunE: runPlan,
}

type siteJSON struct {
	Func      string `json:"func"`
	Transform string `json:"transform"`
	Rendered  string `json:"rendered"`
	Reason    string `json:"reason,omitempty"`
}

func runPlan(cmd *cobra.Command, args []string) error {
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

	renderer := emit.NewRenderer(outcome.Program, outcome.Plan)
	sites := outcome.Plan.Sites()

	if planJSON {
		out := make([]siteJSON, 0, len(sites))
		for _, site := range sites {
			out = append(out, siteJSON{
				Func:      outcome.Program.QualName(site.Func),
				Transform: outcome.Plan.TransformFor(site.Expr).String(),
				Rendered:  renderer.Expr(site.Expr),
				Reason:    outcome.Plan.ReasonFor(site.Expr).String(),
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	indent := rc.manifest.Emit.Indent
	if indent == "" {
		indent = "    "
	}
	for _, site := range sites {
		transform := outcome.Plan.TransformFor(site.Expr)
		fmt.Fprintf(os.Stdout, "%s: %s  [%s]", outcome.Program.QualName(site.Func), renderer.Expr(site.Expr), transform)
		if planExplain && transform == plan.Duplicate {
			if reason := outcome.Plan.ReasonFor(site.Expr); reason != plan.ReasonNone {
				fmt.Fprintf(os.Stdout, "  (%s)", reason)
			}
		}
		fmt.Fprintln(os.Stdout)
		if transform == plan.HoistBorrow {
			fmt.Fprintf(os.Stdout, "%slet %s = %s;\n", indent, outcome.Plan.HoistName(site.Expr), renderer.Value(site.Expr))
		}
	}
	if !rc.quiet {
		fmt.Fprintf(os.Stdout, "%d sites planned\n", len(sites))
	}
	if rc.timings {
		printStageTimings(os.Stdout, outcome)
	}
	return nil
}
