// Package pipeline carries progress events from the analysis driver to
// whatever wants to observe it (progress UI, timing reports).
package pipeline

import "time"

// Stage describes a high-level analysis phase.
type Stage string

const (
	// StageDecode is the input payload decoding stage.
	StageDecode Stage = "decode"
	// StageSeed is the cache probe and registry seeding stage.
	StageSeed Stage = "seed"
	// StageSolve is the fixpoint hint inference stage.
	StageSolve Stage = "solve"
	// StagePlan is the access-site planning stage.
	StagePlan Stage = "plan"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file, or for the whole run when File is
// empty. Pass carries the solver pass counter during StageSolve.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Pass    int
	Changed int
	Err     error
	Elapsed time.Duration
}

// Sink consumes progress events.
type Sink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
