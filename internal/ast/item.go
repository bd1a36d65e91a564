package ast

import "neve/internal/source"

// ItemKind enumerates top-level/definition node variants.
type ItemKind uint8

const (
	ItemLet ItemKind = iota
	ItemFn
	ItemTypeAlias
	ItemStruct
	ItemEnum
	ItemTrait
	ItemImpl
	ItemImport
)

func (k ItemKind) String() string {
	names := [...]string{"Let", "Fn", "TypeAlias", "Struct", "Enum", "Trait", "Impl", "Import"}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// TraitBound is one `Trait<Args>` constraint on a generic parameter or
// associated type.
type TraitBound struct {
	Trait source.Symbol
	Args  []TypeID
}

// GenericParam is one `<T: Bound1 + Bound2>` entry.
type GenericParam struct {
	Name   source.Symbol
	Bounds []TraitBound
}

// EnumVariant is one constructor of an `enum` definition. Exactly one of
// Fields (named) or Positional (tuple-like) is populated; both empty means a
// unit variant.
type EnumVariant struct {
	Name       source.Symbol
	Fields     []RecordTypeField
	Positional []TypeID
	Span       source.Span
}

// AssocTypeDecl declares an associated type on a trait: `type Item: Bound = Default;`.
type AssocTypeDecl struct {
	Name    source.Symbol
	Bounds  []TraitBound
	Default TypeID // NoTypeID if no default
}

// AssocTypeBinding binds an associated type in an `impl`: `type Item = Int;`.
type AssocTypeBinding struct {
	Name source.Symbol
	Type TypeID
}

// TraitMethodSig is one method signature declared by a trait, with an
// optional default body.
type TraitMethodSig struct {
	Name    source.Symbol
	Params  []Param
	RetType TypeID
	Default ExprID // NoExprID if abstract
	Span    source.Span
}

// Item is a single top-level or nested definition node.
type Item struct {
	Kind ItemKind
	Span source.Span
	Vis  Visibility
	Name source.Symbol

	Generics []GenericParam

	// Let
	Pattern PatternID
	Type    TypeID
	Value   ExprID

	// Fn
	Params  []Param
	RetType TypeID
	Body    ExprID

	// Struct
	Fields []RecordTypeField

	// Enum
	Variants []EnumVariant

	// Trait
	AssocDecls []AssocTypeDecl
	Methods    []TraitMethodSig

	// Impl
	TraitName    source.Symbol // NoSymbol for an inherent impl
	TraitArgs    []TypeID
	TargetType   TypeID
	AssocBinds   []AssocTypeBinding
	ImplMethods  []ItemID

	// Import: `import a.b.c [as d];`, `pub import ...;`
	Path  []source.Symbol
	Alias source.Symbol // NoSymbol if no `as` rename
}

// Items owns the arena of all item (definition) nodes in a module.
type Items struct {
	Arena *Arena[Item]
}

func NewItems(capHint uint) *Items {
	return &Items{Arena: NewArena[Item](capHint)}
}

func (it *Items) New(item Item) ItemID {
	return ItemID(it.Arena.Allocate(item))
}

func (it *Items) Get(id ItemID) *Item {
	return it.Arena.Get(uint32(id))
}
