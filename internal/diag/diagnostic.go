package diag

import (
	"neve/internal/source"
)

// Note attaches a secondary span and message to a Diagnostic, e.g. to point
// at a conflicting earlier definition.
type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit is one textual replacement within a suggested Fix.
type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a suggested edit a tool could apply to resolve a Diagnostic.
type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is the uniform record produced by every stage of the pipeline:
// lexer, parser, name resolution, and the type checker all report through
// this shape so a single renderer can format any of them.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}
