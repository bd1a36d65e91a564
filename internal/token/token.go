package token

import (
	"neve/internal/source"
)

// StringSegment is one chunk of an interpolated string: either a literal
// run of text or a nested token run for `{expr}`.
type StringSegment struct {
	Literal bool
	Text    string  // when Literal
	Tokens  []Token // when !Literal: the tokens of the embedded expression
}

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia

	// IntBase is the numeric base (2, 8, 10, 16) for IntLit tokens.
	IntBase int
	// BoolValue holds the literal's truth value for BoolLit tokens.
	BoolValue bool
	// Segments holds the parsed chunks of an InterpString token.
	Segments []StringSegment
}

// IsLiteral reports whether the token is a numeric, boolean, char, string, or path literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, BoolLit, CharLit, StringLit, InterpString, MultilineStr, PathLit:
		return true
	default:
		return false
	}
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	switch t.Kind {
	case HashBrace, LBrace, RBrace, LBracket, RBracket, LParen, RParen, Comma, Semicolon,
		Colon, Assign, Arrow, PipeGt, PlusPlus, SlashSlash, QQ, QDot, Question, DotDot, Dot,
		Lt, Gt, LtEq, GtEq, EqEq, BangEq, AndAnd, OrOr, Bang, Plus, Minus, Star, Slash,
		Percent, Caret, At, Pipe, Underscore:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is one of the 17 reserved keywords.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case KwLet, KwFn, KwType, KwStruct, KwEnum, KwTrait, KwImpl, KwImport, KwIf, KwElse,
		KwMatch, KwPub, KwAs, KwSelf, KwSuper, KwCrate, KwLazy:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
