// Package diagfmt renders collected diagnostics for humans and tools.
package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color bool
	// ShowNotes prints attached notes under each diagnostic.
	ShowNotes bool
	// Max truncates the output, not the bag. Zero means everything.
	Max int
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	// IncludePositions resolves spans to line/col pairs.
	IncludePositions bool
	IncludeNotes     bool
	Max              int
}
