package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"neve/internal/diag"
	"neve/internal/source"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	infoColor  = color.New(color.FgCyan, color.Bold)
	pathColor  = color.New(color.FgWhite, color.Bold)
	caretColor = color.New(color.FgRed, color.Bold)
	noteColor  = color.New(color.FgBlue, color.Bold)
	dimColor   = color.New(color.FgHiBlack)
)

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

func formatFilePath(f *source.File, mode PathMode, baseDir string) string {
	if f == nil {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", baseDir)
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}

// Pretty renders diagnostics for a terminal: a one-line header
// "<path>:<line>:<col>: <severity> <code>: <message>", then (with
// ShowPreview) the offending source line and a caret underline spanning
// the primary span, (with ShowNotes) one located "note:" line per note,
// and (with ShowFixes) one "help:" line per fix title. Call bag.Sort() first for a
// stable, file-then-position ordering.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeOneDiagnostic(w, d, fs, opts)
	}
}

func writeOneDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	writeLocatedLine(w, d.Severity, d.Code, d.Message, d.Primary, fs, opts)
	if opts.ShowPreview {
		writeSourceSnippet(w, d.Primary, fs, opts)
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			writeNoteLine(w, n, fs, opts)
		}
	}
	if opts.ShowFixes {
		for _, fx := range d.Fixes {
			writeFixLine(w, fx, opts)
		}
	}
}

func writeLocatedLine(w io.Writer, sev diag.Severity, code diag.Code, msg string, sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	f := fs.Get(sp.File)
	path := formatFilePath(f, opts.PathMode, fs.BaseDir())
	start, _ := fs.Resolve(sp)

	sevLabel := strings.ToUpper(sev.String())
	codeLabel := code.ID()

	if opts.Color {
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			pathColor.Sprint(path), start.Line, start.Col,
			severityColor(sev).Sprint(sevLabel), dimColor.Sprint(codeLabel), msg)
		return
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, start.Line, start.Col, sevLabel, codeLabel, msg)
}

func writeSourceSnippet(w io.Writer, sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(sp)
	line := sourceLine(f, start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "    %s\n", line)

	caretLen := 1
	if end.Line == start.Line && end.Col > start.Col {
		caretLen = int(end.Col - start.Col)
	}
	pad := runewidth.StringWidth(string([]rune(line)[:minInt(int(start.Col)-1, len([]rune(line)))]))
	caret := strings.Repeat("~", caretLen)
	if len(caret) > 0 {
		caret = "^" + caret[1:]
	} else {
		caret = "^"
	}
	prefix := "    " + strings.Repeat(" ", pad)
	if opts.Color {
		fmt.Fprintf(w, "%s%s\n", prefix, caretColor.Sprint(caret))
		return
	}
	fmt.Fprintf(w, "%s%s\n", prefix, caret)
}

func sourceLine(f *source.File, lineNo uint32) string {
	if lineNo == 0 {
		return ""
	}
	var start uint32
	if lineNo >= 2 && int(lineNo-2) < len(f.LineIdx) {
		start = f.LineIdx[lineNo-2] + 1
	}
	end := uint32(len(f.Content))
	if int(lineNo-1) < len(f.LineIdx) {
		end = f.LineIdx[lineNo-1]
	}
	if start > end || int(end) > len(f.Content) {
		return ""
	}
	return strings.TrimRight(string(f.Content[start:end]), "\r")
}

func writeNoteLine(w io.Writer, n diag.Note, fs *source.FileSet, opts PrettyOpts) {
	f := fs.Get(n.Span.File)
	path := formatFilePath(f, opts.PathMode, fs.BaseDir())
	start, _ := fs.Resolve(n.Span)
	if opts.Color {
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", noteColor.Sprint("note:"), path, start.Line, start.Col, n.Msg)
		return
	}
	fmt.Fprintf(w, "  note: %s:%d:%d: %s\n", path, start.Line, start.Col, n.Msg)
}

func writeFixLine(w io.Writer, fx diag.Fix, opts PrettyOpts) {
	if opts.Color {
		fmt.Fprintf(w, "  %s %s\n", noteColor.Sprint("help:"), fx.Title)
		return
	}
	fmt.Fprintf(w, "  help: %s\n", fx.Title)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
