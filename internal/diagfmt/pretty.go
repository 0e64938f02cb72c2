package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"keel/internal/diag"
	"keel/internal/source"
)

// Pretty renders diagnostics as
//
//	<path>:<line>:<col>: <SEV> [<CODE>]: <message>
//
// followed by the offending source line with a ^~~~ underline when the
// file content is available, then notes. Callers sort the bag first.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	p := printer{w: w, fs: fs, opts: opts}
	for i := 0; i < maxItems; i++ {
		p.diagnostic(&items[i])
	}
	if truncated := len(items) - maxItems; truncated > 0 {
		fmt.Fprintf(w, "... and %d more\n", truncated)
	}
}

type printer struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
}

func (p *printer) diagnostic(d *diag.Diagnostic) {
	fmt.Fprintf(p.w, "%s: %s [%s]: %s\n",
		p.location(d.Primary), p.severity(d.Severity), d.Code.ID(), d.Message)
	p.sourceLine(d.Primary)

	if !p.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		fmt.Fprintf(p.w, "  %s: note: %s\n", p.location(n.Span), n.Msg)
		p.sourceLine(n.Span)
	}
}

func (p *printer) location(sp source.Span) string {
	f := p.fs.Get(sp.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := p.fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
}

func (p *printer) severity(sev diag.Severity) string {
	if !p.opts.Color {
		return sev.String()
	}
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold).Sprint(sev.String())
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold).Sprint(sev.String())
	default:
		return color.New(color.FgCyan).Sprint(sev.String())
	}
}

// sourceLine prints the span's first line and an underline beneath the
// spanned columns. Underline width follows display width, so wide
// runes stay aligned.
func (p *printer) sourceLine(sp source.Span) {
	f := p.fs.Get(sp.File)
	if f == nil || len(f.Content) == 0 || sp.Start >= sp.End {
		return
	}
	start, end := p.fs.Resolve(sp)
	line := p.fs.Line(sp.File, start.Line)
	if line == nil {
		return
	}
	fmt.Fprintf(p.w, "  %s\n", line)

	text := string(line)
	startCol := int(start.Col) - 1
	if startCol > len(text) {
		startCol = len(text)
	}
	pad := runewidth.StringWidth(text[:startCol])

	spanned := int(sp.End - sp.Start)
	if end.Line != start.Line {
		spanned = len(text) - startCol
	}
	underEnd := startCol + spanned
	if underEnd > len(text) {
		underEnd = len(text)
	}
	under := runewidth.StringWidth(text[startCol:underEnd])
	if under < 1 {
		under = 1
	}

	marker := "^" + strings.Repeat("~", under-1)
	if p.opts.Color {
		marker = color.New(color.FgGreen, color.Bold).Sprint(marker)
	}
	fmt.Fprintf(p.w, "  %s%s\n", strings.Repeat(" ", pad), marker)
}
