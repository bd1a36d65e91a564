package hir

import (
	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/source"
)

// ImportEdge is one `import path.to.name [as alias];` item, recorded
// during phase 1 (collection) before its target is resolved in phase 2.
type ImportEdge struct {
	Item   ast.ItemID
	Path   []source.Symbol // all segments but the last: the module path
	Name   source.Symbol   // the last segment: the name imported from that module
	Alias  source.Symbol   // NoSymbol if no `as` rename; the name bound locally otherwise
	Public bool            // true for `pub import`: also re-exported
	Span   source.Span
}

// LocalName returns the name this import binds in the importing module:
// the alias if given, otherwise the imported name itself.
func (e ImportEdge) LocalName() source.Symbol {
	if e.Alias != source.NoSymbol {
		return e.Alias
	}
	return e.Name
}

// Module is one loaded source file: its AST, the definitions it declares
// directly, its import edges, and the names visible to other modules that
// import it (its own public definitions plus any re-exports resolved in
// phase 2).
type Module struct {
	ID      ModuleID
	Path    string // dotted module path, e.g. "std.list"
	AST     *ast.Module
	Defs    []DefID // top-level defs declared directly in this module, in declaration order
	Imports []ImportEdge

	// names is every name visible *inside* this module without
	// qualification: its own top-level defs plus whatever it imports.
	// Populated incrementally across phase 1 (own defs) and phase 2
	// (imports).
	names map[source.Symbol]DefID

	// Exports is the subset of names visible to a module that imports this
	// one: public top-level defs, plus public re-exports once phase 2
	// resolves them.
	Exports map[source.Symbol]DefID
}

// Program is the set of modules loaded for one resolution job, plus the
// program-wide definition arena and the resolution side-tables produced by
// Resolve.
type Program struct {
	in  *source.Interner
	rep diag.Reporter

	modules    map[string]*Module
	order      []ModuleID
	defArena   *defs
	moduleByID map[ModuleID]*Module

	// Resolution side-tables, filled in by Resolve. Keyed by the owning
	// module plus the AST node id, since ExprID/PatternID/TypeID are only
	// unique within one module's arenas.
	ExprRefs      map[NodeKey]Ref
	PatternLocals map[NodeKey]LocalID
	PatternDefs   map[NodeKey]DefID
	TypeRefs      map[NodeKey]DefID

	// FnParamLocals holds a top-level fn's or an impl method's own
	// parameters' LocalIDs, keyed by its defining ast.ItemID combined with
	// the parameter's index (see subKey). Trait default-method bodies have
	// no ItemID of their own (they live inline in the trait's Methods
	// list, not as separate items) and so aren't recorded here.
	FnParamLocals map[NodeKey]LocalID

	// LambdaParamLocals holds a lambda expression's own parameters'
	// LocalIDs, keyed the same way but off the lambda's ast.ExprID.
	LambdaParamLocals map[NodeKey]LocalID

	localCounter uint32
}

// nextLocal allocates a fresh LocalID, unique across the whole program.
// LocalIDs are not reused across functions; a function's body only ever
// looks up the ones its own scope chain bound, so global uniqueness just
// means the evaluator never needs to worry about shadowing between
// unrelated frames.
func (p *Program) nextLocal() LocalID {
	p.localCounter++
	return LocalID(p.localCounter)
}

// NodeKey identifies one AST node within one module.
type NodeKey struct {
	Module ModuleID
	Node   uint32
}

func NewProgram(in *source.Interner, rep diag.Reporter) *Program {
	return &Program{
		in:            in,
		rep:           rep,
		modules:       make(map[string]*Module),
		defArena:      newDefs(),
		moduleByID:    make(map[ModuleID]*Module),
		ExprRefs:          make(map[NodeKey]Ref),
		PatternLocals:     make(map[NodeKey]LocalID),
		PatternDefs:       make(map[NodeKey]DefID),
		TypeRefs:          make(map[NodeKey]DefID),
		FnParamLocals:     make(map[NodeKey]LocalID),
		LambdaParamLocals: make(map[NodeKey]LocalID),
	}
}

func (p *Program) Def(id DefID) *Def { return p.defArena.get(id) }

func (p *Program) Module(id ModuleID) *Module { return p.moduleByID[id] }

// ModuleByPath looks up an already-loaded module by its dotted path.
func (p *Program) ModuleByPath(path string) (*Module, bool) {
	m, ok := p.modules[path]
	return m, ok
}

// Modules returns every loaded module in load order.
func (p *Program) Modules() []*Module {
	out := make([]*Module, len(p.order))
	for i, id := range p.order {
		out[i] = p.moduleByID[id]
	}
	return out
}

func (p *Program) sym(s string) source.Symbol { return p.in.Intern(s) }
