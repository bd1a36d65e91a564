package lexer

import (
	"neve/internal/diag"
	"neve/internal/token"
)

// scanString scans a plain double-quoted string, or a triple-quoted
// multiline string when three quotes open it. Plain strings support the
// escapes \\ \" \n \t \r \0 and \u{H+}; a bare newline terminates the
// literal as unterminated.
func (lx *Lexer) scanString() token.Token {
	if b0, b1, _, ok := lx.cursor.Peek3(); ok && b0 == '"' && b1 == '"' && lx.cursor.File.Content[lx.cursor.Off+2] == '"' {
		return lx.scanMultilineString()
	}

	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == '"':
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		case b == '\\':
			if !lx.scanEscape() {
				sp := lx.cursor.SpanFrom(start)
				lx.errLex(diag.LexBadEscape, sp, "invalid escape sequence")
				return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
			}
		case b == '\n':
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexUnterminatedString, sp, "newline in string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		default:
			lx.cursor.Bump()
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// scanEscape consumes a backslash escape, assuming the cursor is at '\\'.
// Reports false if the escape isn't recognized; a malformed \u{...} escape
// may have consumed bytes past the backslash by then.
func (lx *Lexer) scanEscape() bool {
	lx.cursor.Bump() // '\\'
	if lx.cursor.EOF() {
		return false
	}
	b := lx.cursor.Peek()
	switch b {
	case '\\', '"', '`', 'n', 't', 'r', '0', '\'':
		lx.cursor.Bump()
		return true
	case 'u':
		lx.cursor.Bump()
		if lx.cursor.Peek() != '{' {
			return false
		}
		lx.cursor.Bump()
		n := 0
		for isHex(lx.cursor.Peek()) {
			lx.cursor.Bump()
			n++
		}
		if n == 0 || lx.cursor.Peek() != '}' {
			return false
		}
		lx.cursor.Bump()
		return true
	default:
		return false
	}
}

// scanMultilineString scans a """..."""-delimited literal. The token keeps
// the raw text; the parser strips the common leading whitespace of its
// non-blank lines when it builds the literal.
func (lx *Lexer) scanMultilineString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Bump()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		if b0, b1, _, ok := lx.cursor.Peek3(); ok && b0 == '"' && b1 == '"' && lx.cursor.File.Content[lx.cursor.Off+2] == '"' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.MultilineStr, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
		if lx.cursor.Peek() == '\\' {
			lx.scanEscape()
			continue
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, "unterminated multiline string")
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
