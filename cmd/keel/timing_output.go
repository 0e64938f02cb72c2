package main

import (
	"fmt"
	"io"
	"time"

	"keel/internal/driver"
	"keel/internal/pipeline"
)

func printStageTimings(out io.Writer, outcome *driver.Outcome) {
	if out == nil {
		return
	}
	stages := []struct {
		stage pipeline.Stage
		label string
	}{
		{pipeline.StageDecode, "decoded"},
		{pipeline.StageSeed, "seeded"},
		{pipeline.StageSolve, "solved"},
		{pipeline.StagePlan, "planned"},
	}
	for _, s := range stages {
		if !outcome.Timings.Has(s.stage) {
			continue
		}
		fmt.Fprintf(out, "%s %.1f ms", s.label, toMillis(outcome.Timings.Duration(s.stage)))
		if note := outcome.Timer.Note(string(s.stage)); note != "" {
			fmt.Fprintf(out, "  (%s)", note)
		}
		fmt.Fprintln(out)
	}
	total := outcome.Timings.Sum(pipeline.StageDecode, pipeline.StageSeed, pipeline.StageSolve, pipeline.StagePlan)
	fmt.Fprintf(out, "total %.1f ms\n", toMillis(total))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
