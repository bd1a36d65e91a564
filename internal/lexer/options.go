package lexer

import (
	"neve/internal/diag"
	"neve/internal/source"
)

// Options configures a Lexer. Reporter may be nil, in which case diagnostics
// are silently dropped but lexing still proceeds.
type Options struct {
	Reporter diag.Reporter
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg, nil, nil)
	}
}
