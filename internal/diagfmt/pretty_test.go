package diagfmt

import (
	"strings"
	"testing"

	"keel/internal/diag"
	"keel/internal/source"
)

func sampleBag(fs *source.FileSet) *diag.Bag {
	file := fs.AddVirtual("app.kl", []byte("let total = spend(wallet);\n"))
	bag := diag.NewBag(8)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.InferNoConvergence,
		Message:  "ownership inference still changing after 12 passes",
		Primary:  source.Span{File: file, Start: 12, End: 25},
		Notes: []diag.Note{
			{Span: source.Span{File: file, Start: 18, End: 24}, Msg: "wallet delegated here"},
		},
	})
	return bag
}

func TestPrettyHeaderAndUnderline(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{ShowNotes: true})
	out := sb.String()

	if !strings.Contains(out, "app.kl:1:13: ERROR [INF3001]: ownership inference still changing") {
		t.Errorf("missing header line:\n%s", out)
	}
	if !strings.Contains(out, "let total = spend(wallet);") {
		t.Errorf("missing source line:\n%s", out)
	}
	// 13 bytes spanned: a caret plus 12 tildes.
	if !strings.Contains(out, "^"+strings.Repeat("~", 12)) {
		t.Errorf("missing underline:\n%s", out)
	}
	if !strings.Contains(out, "note: wallet delegated here") {
		t.Errorf("missing note:\n%s", out)
	}
}

func TestPrettyHidesNotesByDefault(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{})
	if strings.Contains(sb.String(), "note:") {
		t.Errorf("notes leaked without ShowNotes:\n%s", sb.String())
	}
}

func TestPrettyTruncates(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("app.kl", nil)
	bag := diag.NewBag(8)
	for i := 0; i < 3; i++ {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevWarning,
			Code:     diag.InferUnknownCallee,
			Message:  "signature never resolved",
			Primary:  source.Span{File: file},
		})
	}

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{Max: 1})
	out := sb.String()
	if got := strings.Count(out, "WARNING"); got != 1 {
		t.Errorf("printed %d diagnostics, want 1:\n%s", got, out)
	}
	if !strings.Contains(out, "... and 2 more") {
		t.Errorf("missing truncation marker:\n%s", out)
	}
}

func TestPrettySkipsUnderlineWithoutContent(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddPathOnly("remote.kl")
	bag := diag.NewBag(4)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.InputUnknownType,
		Message:  "unknown type \"Ghost\"",
		Primary:  source.Span{File: file, Start: 4, End: 9},
	})

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{})
	if strings.Contains(sb.String(), "^") {
		t.Errorf("underline printed for path-only file:\n%s", sb.String())
	}
}
