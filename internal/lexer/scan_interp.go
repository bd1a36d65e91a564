package lexer

import (
	"neve/internal/diag"
	"neve/internal/token"
)

// scanInterpString scans a backtick-delimited interpolated string
// `literal text {expr} more text`. Each `{...}` run is re-lexed with a
// fresh Lexer over the enclosed byte range and recorded as a non-literal
// StringSegment; everything else becomes literal StringSegments.
func (lx *Lexer) scanInterpString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '`'

	var segs []token.StringSegment
	litStart := lx.cursor.Mark()

	flushLiteral := func(end Mark) {
		if end > litStart {
			segs = append(segs, token.StringSegment{
				Literal: true,
				Text:    string(lx.file.Content[litStart:end]),
			})
		}
	}

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == '`':
			flushLiteral(lx.cursor.Mark())
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{
				Kind:     token.InterpString,
				Span:     sp,
				Text:     string(lx.file.Content[sp.Start:sp.End]),
				Segments: segs,
			}
		case b == '\\':
			if !lx.scanEscape() {
				sp := lx.cursor.SpanFrom(start)
				lx.errLex(diag.LexBadEscape, sp, "invalid escape sequence")
				return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
			}
		case b == '{':
			flushLiteral(lx.cursor.Mark())
			exprStart := lx.cursor.Mark()
			lx.cursor.Bump() // '{'
			depth := 1
			for !lx.cursor.EOF() && depth > 0 {
				switch lx.cursor.Peek() {
				case '{':
					depth++
					lx.cursor.Bump()
				case '}':
					depth--
					lx.cursor.Bump()
				case '`':
					// nested interpolated string inside the expression.
					lx.scanInterpString()
				case '"':
					lx.scanString()
				default:
					lx.cursor.Bump()
				}
			}
			if depth != 0 {
				sp := lx.cursor.SpanFrom(start)
				lx.errLex(diag.LexUnterminatedInterpolation, sp, "unterminated string interpolation")
				return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
			}
			inner := lx.file.Content[uint32(exprStart)+1 : lx.cursor.Off-1]
			segs = append(segs, token.StringSegment{
				Literal: false,
				Tokens:  lx.lexSubExpr(inner, uint32(exprStart)+1),
			})
			litStart = lx.cursor.Mark()
		case b == '\n':
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexUnterminatedString, sp, "newline in string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		default:
			lx.cursor.Bump()
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, "unterminated interpolated string")
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// lexSubExpr re-lexes an embedded `{expr}` byte range. A throwaway File with
// the same ID is used so returned spans stay absolute offsets into the
// original file.
func (lx *Lexer) lexSubExpr(content []byte, absOffset uint32) []token.Token {
	subFile := *lx.file
	subFile.Content = content
	sub := New(&subFile, lx.opts)

	var toks []token.Token
	for {
		t := sub.Next()
		t.Span.Start += absOffset
		t.Span.End += absOffset
		if t.Kind == token.EOF {
			break
		}
		toks = append(toks, t)
	}
	return toks
}
