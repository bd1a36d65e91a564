package lexer

import (
	"neve/internal/diag"
	"neve/internal/source"
	"neve/internal/token"
)

// maxTokenLength bounds a single token's byte length, guarding against
// pathological input (e.g. an unterminated literal spanning an entire huge
// file) producing an unbounded token.
const maxTokenLength = 1 << 16

// Lexer turns a source.File into a stream of token.Token, attaching
// collected trivia (whitespace, comments) to the following significant
// token's Leading slice.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token
	hold   []token.Trivia
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{file: file, cursor: NewCursor(file), opts: opts}
}

// Next returns the next significant token, with Leading already populated.
// Once EOF is reached it always returns an EOF token.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}

	start := lx.cursor.Mark()
	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case ch == '_':
		b0, b1, ok := lx.cursor.Peek2()
		if ok && b0 == '_' && isIdentContinueByte(b1) {
			tok = lx.scanIdentOrKeyword()
		} else {
			tok = lx.scanOperatorOrPunct()
		}
	case isIdentStartByte(ch):
		tok = lx.scanIdentOrKeyword()
	case ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()
	case isDec(ch):
		tok = lx.scanNumber()
	case ch == '.' && lx.isNumberAfterDot():
		tok = lx.scanNumber()
	case (ch == '.' || ch == '/') && lx.isPathStart():
		tok = lx.scanPath()
	case ch == '"':
		tok = lx.scanString()
	case ch == '`':
		tok = lx.scanInterpString()
	case ch == '\'':
		tok = lx.scanChar()
	default:
		tok = lx.scanOperatorOrPunct()
	}

	if tok.Span.End-tok.Span.Start > maxTokenLength {
		sp := tok.Span
		lx.errLex(diag.LexTokenTooLong, sp, "token exceeds maximum length")
		tok = token.Token{Kind: token.Invalid, Span: sp, Text: tok.Text}
	}
	_ = start

	tok.Leading = lx.hold
	lx.hold = nil
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}
