package ast

import "neve/internal/source"

// PatternKind enumerates pattern node variants.
type PatternKind uint8

const (
	PatWildcard PatternKind = iota
	PatIdent
	PatLit
	PatTuple
	PatList     // [a, b, ..rest] or []
	PatRecord   // #{ field, other: p, ..rest }
	PatOr       // p1 | p2 | ...
	PatConstructor
	PatBind // `name @ pattern`
)

func (k PatternKind) String() string {
	names := [...]string{
		"Wildcard", "Ident", "Lit", "Tuple", "List", "Record", "Or", "Constructor", "Bind",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// RecordPatternField is one `name` or `name: pattern` entry in a record
// pattern.
type RecordPatternField struct {
	Name    source.Symbol
	Pattern PatternID // NoPatternID for the `name` shorthand (binds Name)
}

// Pattern is a single AST pattern node.
type Pattern struct {
	Kind PatternKind
	Span source.Span

	// Ident / Bind
	Name source.Symbol

	// Lit
	LitExpr ExprID

	// Tuple elements / Or alternatives
	Elems []PatternID

	// List: fixed head patterns plus an optional `..rest` binding (NoSymbol
	// if the list pattern has no rest, e.g. plain `[]` or `[a, b]`).
	Head    []PatternID
	HasRest bool
	RestName source.Symbol

	// Record
	RecordFields []RecordPatternField
	HasRecordRest bool
	RecordRestName source.Symbol

	// Constructor: `Some(p)`, `None`, `Point { x, y }`
	ConstructorName source.Symbol
	Args            []PatternID

	// Bind
	Inner PatternID
}

// Patterns owns the arena of all pattern nodes in a module.
type Patterns struct {
	Arena *Arena[Pattern]
}

func NewPatterns(capHint uint) *Patterns {
	return &Patterns{Arena: NewArena[Pattern](capHint)}
}

func (p *Patterns) New(pat Pattern) PatternID {
	return PatternID(p.Arena.Allocate(pat))
}

func (p *Patterns) Get(id PatternID) *Pattern {
	return p.Arena.Get(uint32(id))
}
