package lexer

import (
	"neve/internal/diag"
	"neve/internal/token"
)

// scanNumber scans an integer or float literal:
//
//	0b[01_]+, 0o[0-7_]+, 0x[0-9a-fA-F_]+  (IntBase 2, 8, 16)
//	[0-9][0-9_]*(\.[0-9_]+)?([eE][+-]?[0-9_]+)?  (IntBase 10, or FloatLit)
//	\.[0-9_]+  (only reachable when isNumberAfterDot matched)
//
// Underscores are accepted as digit separators anywhere a digit is valid.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit
	base := 10

	bad := func(code diag.Code, msg string) token.Token {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(code, sp, msg)
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}

	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		if !isDec(lx.cursor.Peek()) {
			return bad(diag.LexBadNumber, "expected digit after '.'")
		}
		kind = token.FloatLit
		for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
			lx.cursor.Bump()
		}
	} else if lx.cursor.Peek() == '0' {
		lx.cursor.Bump()
		switch lx.cursor.Peek() {
		case 'b', 'B':
			lx.cursor.Bump()
			base = 2
			for {
				b := lx.cursor.Peek()
				if b == '0' || b == '1' || b == '_' {
					lx.cursor.Bump()
				} else {
					break
				}
			}
			return lx.emitNumber(start, kind, base)
		case 'o', 'O':
			lx.cursor.Bump()
			base = 8
			for (lx.cursor.Peek() >= '0' && lx.cursor.Peek() <= '7') || lx.cursor.Peek() == '_' {
				lx.cursor.Bump()
			}
			return lx.emitNumber(start, kind, base)
		case 'x', 'X':
			lx.cursor.Bump()
			base = 16
			for isHex(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
				lx.cursor.Bump()
			}
			return lx.emitNumber(start, kind, base)
		default:
			lx.scanDecimalTail(&kind)
		}
	} else {
		for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
			lx.cursor.Bump()
		}
		lx.scanDecimalTail(&kind)
	}

	if lx.cursor.Peek() == 'e' || lx.cursor.Peek() == 'E' {
		kind = token.FloatLit
		lx.cursor.Bump()
		if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			return bad(diag.LexBadNumber, "expected digit after exponent")
		}
		for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
			lx.cursor.Bump()
		}
	}

	return lx.emitNumber(start, kind, base)
}

// scanDecimalTail consumes an optional fractional part, unless the dot
// actually starts a '..' range operator.
func (lx *Lexer) scanDecimalTail(kind *token.Kind) {
	if lx.cursor.Peek() != '.' {
		return
	}
	b0, b1, ok := lx.cursor.Peek2()
	if ok && b0 == '.' && b1 == '.' {
		return
	}
	lx.cursor.Bump()
	*kind = token.FloatLit
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) emitNumber(start Mark, kind token.Kind, base int) token.Token {
	sp := lx.cursor.SpanFrom(start)
	tok := token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	if kind == token.IntLit {
		tok.IntBase = base
	}
	return tok
}
