package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"regionck/internal/diag"
	"regionck/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	noteColor = color.New(color.FgHiBlack)
	markColor = color.New(color.FgGreen, color.Bold)
)

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

func paint(c *color.Color, enabled bool, s string) string {
	if !enabled {
		return s
	}
	return c.Sprint(s)
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с
// аналогичным форматом. Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeHeading(w, fs, opts, d.Primary,
			paint(severityColor(d.Severity), opts.Color, d.Severity.String()),
			d.Code.ID(), d.Message)
		writeContext(w, fs, opts, d.Primary)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				writeHeading(w, fs, opts, n.Span,
					paint(noteColor, opts.Color, "note"), "", n.Msg)
				writeContext(w, fs, opts, n.Span)
			}
		}
	}
}

func writeHeading(w io.Writer, fs *source.FileSet, opts PrettyOpts, span source.Span, label, code, msg string) {
	loc := formatLocation(fs, span, opts.PathMode)
	if code != "" {
		fmt.Fprintf(w, "%s: %s %s: %s\n", loc, label, code, msg)
		return
	}
	fmt.Fprintf(w, "%s: %s: %s\n", loc, label, msg)
}

func formatLocation(fs *source.FileSet, span source.Span, mode PathMode) string {
	if fs == nil || span == (source.Span{}) {
		return "<unknown>"
	}
	f := fs.Get(span.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(span)
	path := f.FormatPath(mode.formatMode(), fs.BaseDir())
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

// writeContext prints the source line under the span with a ^~~~ marker.
// Indexed files carry no content; the context is silently omitted.
func writeContext(w io.Writer, fs *source.FileSet, opts PrettyOpts, span source.Span) {
	if fs == nil {
		return
	}
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(line, "\t", " "))

	col := int(start.Col)
	if col < 1 {
		col = 1
	}
	width := 1
	if end.Line == start.Line && int(end.Col) > col {
		width = int(end.Col) - col
	}
	if rem := len(line) - col + 1; width > rem && rem > 0 {
		width = rem
	}
	marker := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", col-1), paint(markColor, opts.Color, marker))
}
