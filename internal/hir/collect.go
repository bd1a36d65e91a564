package hir

import (
	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/source"
)

// AddModule runs phase 1 (collection) for one parsed file: it records every
// top-level definition (assigning each a program-wide DefID) and every
// import edge, without yet resolving import targets or re-exports. Call
// ResolveImports once every module participating in the program has been
// added, then Resolve to walk function/lambda bodies.
func (p *Program) AddModule(path string, mod *ast.Module) *Module {
	id := ModuleID(len(p.order) + 1)
	m := &Module{
		ID:      id,
		Path:    path,
		AST:     mod,
		names:   make(map[source.Symbol]DefID),
		Exports: make(map[source.Symbol]DefID),
	}
	p.order = append(p.order, id)
	p.moduleByID[id] = m
	p.modules[path] = m

	for _, itemID := range mod.File.Items {
		item := mod.Items.Get(itemID)
		if item.Kind == ast.ItemImport {
			p.collectImport(m, itemID, item)
			continue
		}
		p.collectItem(m, itemID, item)
	}
	return m
}

func (p *Program) collectImport(m *Module, itemID ast.ItemID, item *ast.Item) {
	if len(item.Path) == 0 {
		return
	}
	edge := ImportEdge{
		Item:   itemID,
		Path:   item.Path[:len(item.Path)-1],
		Name:   item.Path[len(item.Path)-1],
		Alias:  item.Alias,
		Public: item.Vis == ast.VisPublic,
		Span:   item.Span,
	}
	m.Imports = append(m.Imports, edge)
}

// collectItem registers one non-import top-level item, plus any children it
// introduces into the namespace (enum variants, trait methods).
func (p *Program) collectItem(m *Module, itemID ast.ItemID, item *ast.Item) {
	var kind DefKind
	switch item.Kind {
	case ast.ItemLet:
		kind = DefLet
	case ast.ItemFn:
		kind = DefFn
	case ast.ItemTypeAlias:
		kind = DefTypeAlias
	case ast.ItemStruct:
		kind = DefStruct
	case ast.ItemEnum:
		kind = DefEnum
	case ast.ItemTrait:
		kind = DefTrait
	case ast.ItemImpl:
		p.collectImpl(m, itemID, item)
		return
	default:
		return
	}

	name := item.Name
	if item.Kind == ast.ItemLet && name == source.NoSymbol {
		// A let item whose pattern isn't a plain identifier (e.g. a tuple
		// destructuring `let (a, b) = pair;`) introduces one top-level Def
		// per name the pattern binds, rather than a single one under the
		// item's own (absent) name.
		for _, n := range collectPatternNames(m.AST, item.Pattern) {
			p.declareDef(m, Def{Kind: DefLet, Name: n.name, Vis: item.Vis, Module: m.ID, Item: itemID, Span: n.span})
		}
		return
	}

	def := p.declareDef(m, Def{Kind: kind, Name: name, Vis: item.Vis, Module: m.ID, Item: itemID, Span: item.Span})

	switch item.Kind {
	case ast.ItemEnum:
		for _, v := range item.Variants {
			p.declareDef(m, Def{
				Kind: DefEnumVariant, Name: v.Name, Vis: item.Vis, Module: m.ID,
				Item: itemID, Parent: def, Span: v.Span,
			})
		}
	case ast.ItemTrait:
		for _, meth := range item.Methods {
			p.declareDef(m, Def{
				Kind: DefTraitMethod, Name: meth.Name, Vis: item.Vis, Module: m.ID,
				Item: itemID, Parent: def, Span: meth.Span,
			})
		}
	}
}

func (p *Program) collectImpl(m *Module, itemID ast.ItemID, item *ast.Item) {
	// Impls have no name of their own; each method they define is a
	// DefFn reached only through the impl (its target type and, for a
	// trait impl, the trait's method name), so it is allocated a DefID
	// without entering the module's flat name table: a same-named free
	// function in the same module is not a collision.
	p.declareUnnamed(m, Def{Kind: DefImpl, Module: m.ID, Item: itemID, Span: item.Span})
	for _, methID := range item.ImplMethods {
		meth := m.AST.Items.Get(methID)
		p.declareUnnamed(m, Def{
			Kind: DefFn, Name: meth.Name, Vis: meth.Vis, Module: m.ID,
			Item: methID, Span: meth.Span,
		})
	}
}

// declareUnnamed allocates a Def without registering it in the module's
// flat name table, for defs that are only ever reached through another
// path (an impl's methods, an impl itself).
func (p *Program) declareUnnamed(m *Module, d Def) DefID {
	id := p.defArena.add(d)
	m.Defs = append(m.Defs, id)
	return id
}

// declareDef allocates a Def and, for names visible in the plain top-level
// namespace (everything except impl methods, which are reached only
// through their impl's target type), registers it in the module's name
// table, reporting a duplicate-definition diagnostic on collision.
func (p *Program) declareDef(m *Module, d Def) DefID {
	id := p.defArena.add(d)
	m.Defs = append(m.Defs, id)
	if d.Name == source.NoSymbol {
		return id
	}
	if existing, ok := m.names[d.Name]; ok {
		prev := p.defArena.get(existing)
		diag.ReportError(p.rep, diag.HirDuplicateDefinition, d.Span,
			"'"+p.in.MustLookup(d.Name)+"' is already defined in this module").
			WithNote(prev.Span, "previous definition here").
			Emit()
		return id
	}
	m.names[d.Name] = id
	if d.Vis == ast.VisPublic {
		m.Exports[d.Name] = id
	}
	return id
}
