package lexer

import (
	"neve/internal/diag"
	"neve/internal/token"
)

// scanChar scans a single-quoted character literal 'c', '\n', or '\u{H+}'.
func (lx *Lexer) scanChar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '\''

	if lx.cursor.Peek() == '\\' {
		if !lx.scanEscape() {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexBadEscape, sp, "invalid escape sequence")
			return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
	} else if !lx.cursor.EOF() && lx.cursor.Peek() != '\'' {
		lx.bumpRune()
	} else {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnterminatedChar, sp, "empty character literal")
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}

	if lx.cursor.Peek() != '\'' {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnterminatedChar, sp, "unterminated character literal")
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	lx.cursor.Bump()
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.CharLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
