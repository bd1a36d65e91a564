// Package types implements Neve's type representation: a Hindley-Milner
// type language extended with row-polymorphic records and trait bounds
// (see internal/sema for inference and unification over these types).
//
// Unlike a nominally-typed, ownership-tracking language's type table (which
// can hash-intern every descriptor once and for all, since no descriptor
// ever changes after it's built), an HM type variable's identity is mutable:
// unification resolves it by pointing it at another type, in place, as
// inference proceeds. Types therefore live in a plain growable arena
// (Store) addressed by TypeID, not a hash-interning table — only the
// variable's Link field is ever mutated after creation; every other kind of
// Type is immutable once built.
package types

import (
	"fmt"

	"neve/internal/source"
)

// TypeID addresses one Type in a Store. Zero is reserved as "no type".
type TypeID uint32

const NoTypeID TypeID = 0

// VarID distinguishes type variables from each other; unlike TypeID it is
// never reused as an arena index, since a variable keeps its identity
// across Store growth (generalization copies schemes by VarID, not TypeID).
type VarID uint32

// Kind discriminates the shape of a Type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVar
	KindUnit
	KindBool
	KindInt
	KindFloat
	KindString
	KindChar
	KindPath
	KindTuple
	KindList
	KindRecord
	KindFunction
	KindConstructor
)

func (k Kind) String() string {
	switch k {
	case KindVar:
		return "var"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindChar:
		return "char"
	case KindPath:
		return "path"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	case KindFunction:
		return "function"
	case KindConstructor:
		return "constructor"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// RecordField is one named, typed field of a record type.
type RecordField struct {
	Name source.Symbol
	Type TypeID
}

// Type is a compact descriptor for one HM type, reusing fields across kinds
// the way a tagged union would in a language with one:
//
//   - KindVar: VarID/Level/Link describe the variable; Link is NoTypeID
//     until unification resolves it, after which Resolve follows it.
//   - KindList: Elem is the element type.
//   - KindTuple: Elems is the component types, in order.
//   - KindRecord: Fields lists the known fields; RowVar is NoTypeID for a
//     closed record literal's type and a KindVar for an open row (a
//     function accepting "any record with at least these fields").
//   - KindFunction: Elems is the parameter types, Elem is the result type.
//   - KindConstructor: Name plus Def identify the nominal struct/enum/alias
//     declaration being referenced; Elems is its type arguments.
type Type struct {
	Kind Kind

	VarID VarID
	Level uint32
	Link  TypeID

	Elem  TypeID
	Elems []TypeID

	Fields []RecordField
	RowVar TypeID

	Name source.Symbol
	Def  uint32 // corresponds to a hir.DefID; kept untyped to avoid an import cycle
}

// Store is an append-only arena of Types, plus the primitive TypeIDs every
// program needs (seeded once by NewStore).
type Store struct {
	types   []Type
	nextVar uint32

	Unit   TypeID
	Bool   TypeID
	Int    TypeID
	Float  TypeID
	String TypeID
	Char   TypeID
	Path   TypeID
}

func NewStore() *Store {
	s := &Store{}
	s.types = append(s.types, Type{Kind: KindInvalid}) // reserve 0 as NoTypeID
	s.Unit = s.add(Type{Kind: KindUnit})
	s.Bool = s.add(Type{Kind: KindBool})
	s.Int = s.add(Type{Kind: KindInt})
	s.Float = s.add(Type{Kind: KindFloat})
	s.String = s.add(Type{Kind: KindString})
	s.Char = s.add(Type{Kind: KindChar})
	s.Path = s.add(Type{Kind: KindPath})
	return s
}

func (s *Store) add(t Type) TypeID {
	id := TypeID(len(s.types))
	s.types = append(s.types, t)
	return id
}

// Get returns a mutable pointer to the Type at id, so the unifier can set a
// variable's Link in place. Panics on an out-of-range id: every id in
// circulation was handed out by this same Store.
func (s *Store) Get(id TypeID) *Type {
	return &s.types[id]
}

// NewVar allocates a fresh, unbound type variable at the given binding
// level (the enclosing let-nesting depth; see internal/sema's
// generalization pass for how Level is used to decide which variables a
// let may quantify over).
func (s *Store) NewVar(level uint32) TypeID {
	s.nextVar++
	return s.add(Type{Kind: KindVar, VarID: VarID(s.nextVar), Level: level, Link: NoTypeID})
}

func (s *Store) NewList(elem TypeID) TypeID {
	return s.add(Type{Kind: KindList, Elem: elem})
}

func (s *Store) NewTuple(elems []TypeID) TypeID {
	return s.add(Type{Kind: KindTuple, Elems: append([]TypeID(nil), elems...)})
}

// NewRecord describes a record type. A NoTypeID rowVar means exactly these
// fields and no others (a record literal's type); a KindVar rowVar leaves
// the type open to further fields, the row-polymorphism a function like
// `fn name(r) -> r.name` needs to accept any record with at least a `name`
// field.
func (s *Store) NewRecord(fields []RecordField, rowVar TypeID) TypeID {
	return s.add(Type{Kind: KindRecord, Fields: append([]RecordField(nil), fields...), RowVar: rowVar})
}

func (s *Store) NewFunction(params []TypeID, result TypeID) TypeID {
	return s.add(Type{Kind: KindFunction, Elems: append([]TypeID(nil), params...), Elem: result})
}

// NewConstructor describes an application of a nominal type (a struct,
// enum, or type alias declaration) to zero or more type arguments, e.g.
// `Option<Int>` or a zero-argument `Color`.
func (s *Store) NewConstructor(name source.Symbol, def uint32, args []TypeID) TypeID {
	return s.add(Type{Kind: KindConstructor, Name: name, Def: def, Elems: append([]TypeID(nil), args...)})
}

// Resolve follows a variable's union-find Link chain to the representative
// type it was unified with, or returns id unchanged if it names anything
// other than a bound variable. Compresses the chain it walks, matching the
// path-compression idiom inference engines use to keep repeated lookups
// cheap over a long chain of unifications.
func (s *Store) Resolve(id TypeID) TypeID {
	for {
		t := s.Get(id)
		if t.Kind != KindVar || t.Link == NoTypeID {
			return id
		}
		next := s.Get(t.Link)
		if next.Kind == KindVar && next.Link != NoTypeID {
			t.Link = next.Link // path compression
			continue
		}
		return t.Link
	}
}
