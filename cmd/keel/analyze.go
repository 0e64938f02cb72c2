package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"keel/internal/diagfmt"
	"keel/internal/driver"
	"keel/internal/infer"
)

var analyzeJSON bool

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit diagnostics and summary as JSON")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [inputs...]",
	Short: "Infer ownership hints and plan access sites",
	Long: `Analyze decodes the program payloads, runs ownership inference to a
fixpoint, and plans the per-site corrections. Inputs come from keel.toml
unless given explicitly.`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	rc, err := setupRun(cmd, args)
	if err != nil {
		return err
	}

	outcome, runErr := runAnalysis(cmd, rc, !analyzeJSON)
	if outcome == nil {
		return runErr
	}

	printDiagnostics(rc, outcome, analyzeJSON)
	if runErr != nil {
		return runErr
	}

	if !rc.quiet && !analyzeJSON {
		printSummary(outcome)
	}
	if rc.timings && !analyzeJSON {
		printStageTimings(os.Stdout, outcome)
	}
	return nil
}

// runAnalysis picks the interactive or plain driver invocation.
func runAnalysis(cmd *cobra.Command, rc *runSetup, allowTUI bool) (*driver.Outcome, error) {
	ctx := cmd.Context()
	if allowTUI && !rc.quiet && shouldUseTUI(rc.ui) {
		return runAnalyzeWithUI(ctx, "keel analyze", rc.names, rc.opts)
	}
	return driver.Analyze(ctx, rc.opts)
}

func printDiagnostics(rc *runSetup, outcome *driver.Outcome, asJSON bool) {
	if outcome.Bag.Len() == 0 {
		return
	}
	outcome.Bag.Sort()
	fs := outcome.Program.Files
	if asJSON {
		_ = diagfmt.JSON(os.Stdout, outcome.Bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
			Max:              rc.opts.MaxDiagnostics,
		})
		return
	}
	diagfmt.Pretty(os.Stderr, outcome.Bag, fs, diagfmt.PrettyOpts{
		Color:     useColor(),
		ShowNotes: true,
		Max:       rc.opts.MaxDiagnostics,
	})
}

func printSummary(outcome *driver.Outcome) {
	var owned, shared, exclusive int
	for _, exp := range outcome.Result.Registry.Export() {
		hints := exp.Params
		if exp.Receiver.Resolved() {
			hints = append(hints, exp.Receiver)
		}
		for _, h := range hints {
			switch h {
			case infer.HintSharedRef:
				shared++
			case infer.HintExclusiveRef:
				exclusive++
			default:
				owned++
			}
		}
	}

	cacheNote := ""
	if outcome.CacheHit {
		cacheNote = ", seeded from cache"
	}
	fmt.Fprintf(os.Stdout, "converged in %d passes%s\n", outcome.Result.Passes, cacheNote)
	fmt.Fprintf(os.Stdout, "hints: %d owned, %d shared, %d exclusive\n", owned, shared, exclusive)
	fmt.Fprintf(os.Stdout, "planned %d access sites\n", len(outcome.Plan.Sites()))
}
