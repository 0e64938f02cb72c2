package diag

import (
	"testing"

	"keel/internal/source"
)

func TestBagLimitAndErrors(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(Diagnostic{Severity: SevWarning, Code: InferUnknownCallee}) {
		t.Fatal("first add rejected")
	}
	if !bag.Add(Diagnostic{Severity: SevError, Code: InferNoConvergence}) {
		t.Fatal("second add rejected")
	}
	if bag.Add(Diagnostic{Severity: SevError, Code: InferNoConvergence}) {
		t.Fatal("add past limit accepted")
	}
	if !bag.HasErrors() {
		t.Fatal("expected HasErrors")
	}
	if !bag.HasWarnings() {
		t.Fatal("expected HasWarnings")
	}
}

func TestBagSortDeterministic(t *testing.T) {
	bag := NewBag(8)
	spanB := source.Span{File: 1, Start: 40, End: 41}
	spanA := source.Span{File: 1, Start: 10, End: 12}
	bag.Add(Diagnostic{Severity: SevWarning, Code: InferUnknownCallee, Primary: spanB})
	bag.Add(Diagnostic{Severity: SevError, Code: InferNoConvergence, Primary: spanA})
	bag.Add(Diagnostic{Severity: SevInfo, Code: InferInfo, Primary: spanA})

	bag.Sort()
	items := bag.Items()
	if items[0].Code != InferNoConvergence {
		t.Fatalf("items[0] = %v, want non-convergence first", items[0].Code)
	}
	if items[1].Code != InferInfo {
		t.Fatalf("items[1] = %v, want info at same span after error", items[1].Code)
	}
	if items[2].Code != InferUnknownCallee {
		t.Fatalf("items[2] = %v, want later span last", items[2].Code)
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(8)
	span := source.Span{File: 3, Start: 5, End: 9}
	for i := 0; i < 3; i++ {
		bag.Add(Diagnostic{Severity: SevWarning, Code: InferUnknownCallee, Primary: span})
	}
	bag.Dedup()
	if bag.Len() != 1 {
		t.Fatalf("after dedup len = %d, want 1", bag.Len())
	}
}

func TestReportBuilderEmitOnce(t *testing.T) {
	bag := NewBag(4)
	rep := BagReporter{Bag: bag}

	b := ReportError(rep, InferNoConvergence, source.Span{File: 1}, "no fixpoint").
		WithNote(source.Span{File: 1, Start: 3, End: 4}, "binding kept escalating")
	b.Emit()
	b.Emit()

	if bag.Len() != 1 {
		t.Fatalf("emitted %d diagnostics, want 1", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("notes = %d, want 1", len(bag.Items()[0].Notes))
	}
}

func TestCodeID(t *testing.T) {
	cases := []struct {
		code Code
		id   string
	}{
		{InputBadJSON, "INP1001"},
		{ProjManifestSyntax, "PRJ2001"},
		{InferNoConvergence, "INF3001"},
		{PlanUnplannedSite, "GEN4001"},
		{UnknownCode, "E0000"},
	}
	for _, tc := range cases {
		if got := tc.code.ID(); got != tc.id {
			t.Errorf("ID(%d) = %q, want %q", tc.code, got, tc.id)
		}
	}
}
