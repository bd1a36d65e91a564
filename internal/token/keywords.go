package token

var keywords = map[string]Kind{
	"let":    KwLet,
	"fn":     KwFn,
	"type":   KwType,
	"struct": KwStruct,
	"enum":   KwEnum,
	"trait":  KwTrait,
	"impl":   KwImpl,
	"import": KwImport,
	"if":     KwIf,
	"else":   KwElse,
	"match":  KwMatch,
	"pub":    KwPub,
	"as":     KwAs,
	"self":   KwSelf,
	"super":  KwSuper,
	"crate":  KwCrate,
	"lazy":   KwLazy,
}

// boolLiterals holds the two reserved spellings that the lexer turns
// directly into BoolLit tokens. They are not counted among the 17 keywords:
// "true"/"false" behave as literals, not as reserved identifiers that shadow
// a distinct grammatical category.
var boolLiterals = map[string]bool{
	"true":  true,
	"false": false,
}

// LookupKeyword reports whether ident is one of the 17 reserved keywords.
// Keywords are case-sensitive; only the lowercase spelling is recognized.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// LookupBoolLiteral reports whether ident spells a boolean literal.
func LookupBoolLiteral(ident string) (value bool, ok bool) {
	v, ok := boolLiterals[ident]
	return v, ok
}
