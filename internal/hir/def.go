package hir

import (
	"neve/internal/ast"
	"neve/internal/source"
)

// DefKind enumerates the kinds of module-level definitions a DefID can
// point to.
type DefKind uint8

const (
	DefLet DefKind = iota
	DefFn
	DefTypeAlias
	DefStruct
	DefEnum
	DefEnumVariant
	DefTrait
	DefTraitMethod
	DefImpl
	// DefPrelude names a standard-library namespace (list, string, math,
	// io, option, result, map, set, collections), or the bare
	// "derivation" builtin, seeded into every module's name table by
	// Resolve, rather than a real item declared anywhere in source.
	// Item/Parent are unused; the evaluator resolves one to either a
	// record of builtins or (for "derivation") the builtin itself,
	// keyed off Name alone.
	DefPrelude
)

func (k DefKind) String() string {
	names := [...]string{
		"Let", "Fn", "TypeAlias", "Struct", "Enum", "EnumVariant", "Trait", "TraitMethod", "Impl", "Prelude",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Def is one program-wide definition: a top-level item, an enum's variant,
// or a trait's method signature. Struct/enum/trait names and value names
// (let/fn) share one namespace per module, matching a single flat import
// table; impls are anonymous (Name is NoSymbol) and are never looked up by
// name, only enumerated for trait-method resolution.
type Def struct {
	Kind   DefKind
	Name   source.Symbol
	Vis    ast.Visibility
	Module ModuleID
	Item   ast.ItemID // the defining top-level item; NoItemID for Impl's synthesized children that have no separate item
	Parent DefID       // enum variant's owning enum, or trait method's owning trait; NoDefID otherwise
	Span   source.Span
}

// defs is the program-wide arena of Def records, indexed the same way as
// ast's 1-based arenas (0 is NoDefID).
type defs struct {
	entries []Def
}

func newDefs() *defs {
	return &defs{entries: make([]Def, 0, 64)}
}

func (d *defs) add(def Def) DefID {
	d.entries = append(d.entries, def)
	return DefID(len(d.entries))
}

func (d *defs) get(id DefID) *Def {
	if id == NoDefID {
		return nil
	}
	return &d.entries[id-1]
}
