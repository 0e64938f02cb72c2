package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"keel/internal/driver"
	"keel/internal/pipeline"
	"keel/internal/ui"
)

type analyzeOutcome struct {
	outcome *driver.Outcome
	err     error
}

// runAnalyzeWithUI drives Analyze in the background while a Bubble Tea
// model consumes its progress events.
func runAnalyzeWithUI(ctx context.Context, title string, files []string, opts driver.Options) (*driver.Outcome, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = pipeline.ChannelSink{Ch: events}
		out, err := driver.Analyze(ctx, optsCopy)
		outcomeCh <- analyzeOutcome{outcome: out, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	result := <-outcomeCh
	if uiErr != nil {
		return result.outcome, uiErr
	}
	return result.outcome, result.err
}
