// Package diag defines the diagnostic model shared by every pipeline phase:
// the lexer, parser, name resolver, and type checker all report through it.
//
// Diagnostic is the central record:
//
//   - Severity — Info, Warning, or Error (severity.go).
//   - Code — a compact numeric identifier with a stable string form (codes.go).
//   - Message — short, actionable text.
//   - Primary — the source.Span the diagnostic points at.
//   - Notes — optional secondary spans/messages for added context.
//   - Fixes — optional suggested edits.
//
// Producers use a Reporter to stay decoupled from storage and formatting.
// BagReporter collects into a Bag, which supports sorting, deduplication, and
// capping. Rendering to a terminal lives in internal/diagfmt, not here.
package diag
