package ast

import "neve/internal/source"

// TypeKind enumerates syntactic type-expression variants, as written in
// source before the type checker resolves them to internal/types.Type.
type TypeKind uint8

const (
	TypeName TypeKind = iota // `Int`, `List<T>`, `Option<T>`
	TypeTuple
	TypeListLit // `[T]`
	TypeRecordLit
	TypeFunction // `(T, U) -> V`
	TypeSelf     // `Self`
	TypeAssoc    // `Self.Item`
)

func (k TypeKind) String() string {
	names := [...]string{"Name", "Tuple", "ListLit", "RecordLit", "Function", "Self", "Assoc"}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// RecordTypeField is one `name: Type` entry in a record type literal.
type RecordTypeField struct {
	Name source.Symbol
	Type TypeID
}

// TypeExpr is a single syntactic type-expression node.
type TypeExpr struct {
	Kind TypeKind
	Span source.Span

	// TypeName
	Name     source.Symbol
	TypeArgs []TypeID

	// Tuple / Function params
	Elems []TypeID

	// ListLit
	Elem TypeID

	// RecordLit
	Fields []RecordTypeField
	OpenRow bool // true if the record type literal ends in `..`

	// Function
	Params []TypeID
	Ret    TypeID

	// Assoc: `Base.Name`
	Base TypeID
}

// Types owns the arena of all syntactic type-expression nodes in a module.
type Types struct {
	Arena *Arena[TypeExpr]
}

func NewTypes(capHint uint) *Types {
	return &Types{Arena: NewArena[TypeExpr](capHint)}
}

func (t *Types) New(te TypeExpr) TypeID {
	return TypeID(t.Arena.Allocate(te))
}

func (t *Types) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}
