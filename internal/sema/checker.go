// Package sema type-checks a resolved program (internal/hir's output)
// against Neve's Hindley-Milner type system: unification-based inference
// with let-polymorphism, row-polymorphic records, trait bounds, and match
// exhaustiveness over algebraic data types.
package sema

import (
	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/hir"
	"neve/internal/source"
	"neve/internal/types"
)

// structDef is the elaborated signature of a struct declaration: its
// generic parameters (as template variables, refreshed on each
// instantiation) and its field types, expressed in terms of those
// template variables.
type structDef struct {
	genericVars []types.VarID
	fields      []types.RecordField
}

// enumDef is the elaborated signature of an enum declaration: its generic
// parameters plus, per variant, the payload types (positional or named)
// expressed in terms of those template variables.
type enumDef struct {
	genericVars []types.VarID
	variants    map[source.Symbol]variantDef
	order       []source.Symbol // declaration order, for exhaustiveness messages
}

type variantDef struct {
	fields     []types.RecordField // named-field variant
	positional []types.TypeID      // tuple-like variant
	def        hir.DefID
}

// traitDef is the elaborated signature of a trait: its method signatures,
// expressed with an implicit `Self` template variable.
type traitDef struct {
	selfVar types.VarID
	methods map[source.Symbol]types.TypeID // method type, in terms of selfVar
}

// implDef records one `impl Trait for Type` (or inherent impl) so method
// calls and trait-bound obligations can be discharged against it.
type implDef struct {
	trait   source.Symbol // NoSymbol for an inherent impl
	target  types.TypeID  // the impl's target type, with its own fresh generics
	methods map[source.Symbol]hir.DefID
}

// aliasDef is the elaborated signature of a `type Name<T> = Target;`
// declaration: its generic parameters and the target type expressed in
// terms of them, substituted at each use site via types.Store.Substitute.
type aliasDef struct {
	genericVars []types.VarID
	target      types.TypeID
}

// Checker holds the elaborated signatures and in-progress inference state
// for one program. Construct with NewChecker and call Check.
type Checker struct {
	prog  *hir.Program
	in    *source.Interner
	rep   diag.Reporter
	store *types.Store

	structs map[hir.DefID]*structDef
	enums   map[hir.DefID]*enumDef
	traits  map[hir.DefID]*traitDef
	aliases map[hir.DefID]aliasDef
	impls   []*implDef

	selfSym source.Symbol

	// variantOwner maps an enum variant's DefID back to its enum's DefID,
	// so a pattern or constructor call naming the variant can find its
	// payload signature.
	variantOwner map[hir.DefID]hir.DefID

	sigs       map[hir.DefID]types.TypeID // monomorphic signature, pre-generalization
	schemes    map[hir.DefID]types.Scheme // final generalized type, post-checking
	localTypes map[hir.LocalID]types.TypeID

	// checkedLets guards against re-checking the same `let` item's value
	// once per name it destructures: collectTypeDecls/assignSignatures
	// walk m.Defs, which holds one DefID per bound name, all sharing one
	// ast.ItemID.
	checkedLets map[ast.ItemID]bool

	level uint32
}

func NewChecker(prog *hir.Program, in *source.Interner, rep diag.Reporter, store *types.Store) *Checker {
	return &Checker{
		prog:         prog,
		in:           in,
		rep:          rep,
		store:        store,
		structs:      make(map[hir.DefID]*structDef),
		enums:        make(map[hir.DefID]*enumDef),
		traits:       make(map[hir.DefID]*traitDef),
		aliases:      make(map[hir.DefID]aliasDef),
		variantOwner: make(map[hir.DefID]hir.DefID),
		sigs:         make(map[hir.DefID]types.TypeID),
		schemes:      make(map[hir.DefID]types.Scheme),
		localTypes:   make(map[hir.LocalID]types.TypeID),
		checkedLets:  make(map[ast.ItemID]bool),
	}
}

// Check runs the whole pipeline: elaborate every nominal type declaration,
// assign a monomorphic signature to every value-level def (so mutually
// recursive top-level definitions can refer to each other), check every
// body against its signature, then generalize. Each pass runs over every
// module before the next starts, so a def in one module can refer to one
// declared in another regardless of load order.
func (c *Checker) Check() {
	for _, m := range c.prog.Modules() {
		c.collectTypeDecls(m)
	}
	for _, m := range c.prog.Modules() {
		c.collectTraitsAndImpls(m)
	}
	for _, m := range c.prog.Modules() {
		c.assignSignatures(m)
	}
	for _, m := range c.prog.Modules() {
		c.checkBodies(m)
	}
}

// SchemeOf returns a def's final, generalized type, valid only after Check
// has run.
func (c *Checker) SchemeOf(id hir.DefID) (types.Scheme, bool) {
	s, ok := c.schemes[id]
	return s, ok
}

// Store returns the type arena every elaborated TypeID in this Checker
// belongs to.
func (c *Checker) Store() *types.Store { return c.store }

func (c *Checker) newVar() types.TypeID { return c.store.NewVar(c.level) }

func (c *Checker) errorf(span source.Span, code diag.Code, msg string) {
	diag.ReportError(c.rep, code, span, msg).Emit()
}
