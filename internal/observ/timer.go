// Package observ carries the run instrumentation the driver threads
// through each analysis stage.
package observ

import "time"

// Phase is one timed span of a run with a short outcome note, for
// example "3 passes" or "cache hit".
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer records phases in begin order.
type Timer struct {
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index and records what it accomplished.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Phases returns the recorded phases in begin order.
func (t *Timer) Phases() []Phase { return t.phases }

// Note returns the recorded note of the named phase, empty when the
// phase never ran.
func (t *Timer) Note(name string) string {
	for i := range t.phases {
		if t.phases[i].Name == name {
			return t.phases[i].Note
		}
	}
	return ""
}
