package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"keel/internal/diag"
	"keel/internal/source"
)

func TestBuildDiagnosticsOutput(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true})
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d, diagnostics = %d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Code != "INF3001" || d.Severity != "ERROR" {
		t.Errorf("code = %q severity = %q", d.Code, d.Severity)
	}
	if d.Location.File != "app.kl" || d.Location.StartLine != 1 || d.Location.StartCol != 13 {
		t.Errorf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "wallet delegated here" {
		t.Errorf("notes = %+v", d.Notes)
	}
}

func TestJSONOmitsNotesAndPositionsByDefault(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)

	var sb strings.Builder
	if err := JSON(&sb, bag, fs, JSONOpts{}); err != nil {
		t.Fatal(err)
	}

	var round DiagnosticsOutput
	if err := json.Unmarshal([]byte(sb.String()), &round); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(round.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %d", len(round.Diagnostics))
	}
	if round.Diagnostics[0].Location.StartLine != 0 {
		t.Error("positions included without IncludePositions")
	}
	if round.Diagnostics[0].Notes != nil {
		t.Error("notes included without IncludeNotes")
	}
}

func TestJSONRespectsMax(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("app.kl", nil)
	bag := diag.NewBag(8)
	for i := 0; i < 5; i++ {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevWarning,
			Code:     diag.InferUnknownCallee,
			Message:  "signature never resolved",
			Primary:  source.Span{File: file},
		})
	}
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Errorf("count = %d, want 2", out.Count)
	}
}
