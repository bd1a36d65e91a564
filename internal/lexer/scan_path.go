package lexer

import (
	"neve/internal/token"
)

// isPathStart reports whether the cursor is at the start of a path literal:
// "./", "../", or a bare "/" followed by a path segment character.
func (lx *Lexer) isPathStart() bool {
	b0, b1, ok := lx.cursor.Peek2()
	if !ok {
		if lx.cursor.Peek() == '/' {
			return true
		}
		return false
	}
	if b0 == '.' && b1 == '/' {
		return true
	}
	if b0 == '.' {
		if p0, p1, p2, ok2 := lx.cursor.Peek3(); ok2 && p0 == '.' && p1 == '.' && p2 == '/' {
			return true
		}
	}
	if b0 == '/' && (isIdentStartByte(b1) || b1 == '.') {
		return true
	}
	return false
}

func isPathSegmentByte(b byte) bool {
	return isIdentContinueByte(b) || b == '.' || b == '-' || b == '/'
}

// scanPath scans a path literal: a run of path-segment characters starting
// with "./", "../", or "/".
func (lx *Lexer) scanPath() token.Token {
	start := lx.cursor.Mark()
	for isPathSegmentByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.PathLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
