package hir

import (
	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/source"
)

// RefKind distinguishes a resolved identifier's target: a program-wide
// definition, or a binding local to the enclosing function/lambda body.
type RefKind uint8

const (
	RefDef RefKind = iota
	RefLocal
)

// Ref is what one identifier expression resolved to.
type Ref struct {
	Kind  RefKind
	Def   DefID
	Local LocalID
}

// Resolve runs phase 3: walking every module's item bodies (let values,
// function bodies, trait default method bodies, impl method bodies) to
// resolve every identifier expression, type name, and pattern binding.
// Call this once ResolveImports has settled every module's visible-name
// table.
func (p *Program) Resolve() {
	for _, id := range p.order {
		p.resolveModule(p.moduleByID[id])
	}
}

func (p *Program) resolveModule(m *Module) {
	p.seedPrelude(m)
	for _, itemID := range m.AST.File.Items {
		p.resolveItem(m, itemID)
	}
}

func (p *Program) resolveItem(m *Module, itemID ast.ItemID) {
	item := m.AST.Items.Get(itemID)
	switch item.Kind {
	case ast.ItemLet:
		if item.Type != ast.NoTypeID {
			p.resolveType(m, item.Type)
		}
		if item.Value != ast.NoExprID {
			p.resolveExpr(m, nil, item.Value)
		}
		p.bindTopLevelPattern(m, item.Pattern)

	case ast.ItemFn:
		p.resolveFnBody(m, itemID, item.Generics, item.Params, item.RetType, item.Body)

	case ast.ItemTypeAlias:
		p.resolveType(m, item.Type)

	case ast.ItemStruct:
		for _, f := range item.Fields {
			p.resolveType(m, f.Type)
		}

	case ast.ItemEnum:
		for _, v := range item.Variants {
			for _, f := range v.Fields {
				p.resolveType(m, f.Type)
			}
			for _, t := range v.Positional {
				p.resolveType(m, t)
			}
		}

	case ast.ItemTrait:
		for _, d := range item.AssocDecls {
			if d.Default != ast.NoTypeID {
				p.resolveType(m, d.Default)
			}
		}
		for _, meth := range item.Methods {
			if meth.RetType != ast.NoTypeID {
				p.resolveType(m, meth.RetType)
			}
			if meth.Default != ast.NoExprID {
				p.resolveFnBody(m, ast.NoItemID, nil, meth.Params, meth.RetType, meth.Default)
			} else {
				for _, param := range meth.Params {
					p.resolveType(m, param.Type)
				}
			}
		}

	case ast.ItemImpl:
		p.resolveType(m, item.TargetType)
		for _, b := range item.AssocBinds {
			p.resolveType(m, b.Type)
		}
		for _, methID := range item.ImplMethods {
			p.resolveItem(m, methID)
		}

	case ast.ItemImport:
		// Fully handled in phase 2.
	}
}

func (p *Program) resolveFnBody(m *Module, itemID ast.ItemID, generics []ast.GenericParam, params []ast.Param, retType ast.TypeID, body ast.ExprID) {
	sc := newScope(nil)
	for i, param := range params {
		if param.Type != ast.NoTypeID {
			p.resolveType(m, param.Type)
		}
		local := sc.bind(p, param.Name)
		if itemID != ast.NoItemID {
			p.FnParamLocals[p.subKey(m, uint32(itemID), i)] = local
		}
	}
	if retType != ast.NoTypeID {
		p.resolveType(m, retType)
	}
	if body != ast.NoExprID {
		p.resolveExpr(m, sc, body)
	}
}

// lookupName resolves a bare (unqualified) name against the local scope
// chain first, then the module's own namespace (its defs plus its
// imports).
func (p *Program) lookupName(m *Module, sc *scope, name source.Symbol) (Ref, bool) {
	if sc != nil {
		if local, ok := sc.lookup(name); ok {
			return Ref{Kind: RefLocal, Local: local}, true
		}
	}
	if def, ok := m.names[name]; ok {
		return Ref{Kind: RefDef, Def: def}, true
	}
	return Ref{}, false
}

func (p *Program) resolveExpr(m *Module, sc *scope, id ast.ExprID) {
	if id == ast.NoExprID {
		return
	}
	e := m.AST.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprIdent:
		if e.Qualifier != ast.QualNone {
			// self/super/crate-qualified paths resolve relative to the
			// module graph, a module-loading concern handled once
			// internal/project assembles the program; left unresolved
			// here is not an error, just out of this pass's scope.
			return
		}
		ref, ok := p.lookupName(m, sc, e.Name)
		if !ok {
			diag.ReportError(p.rep, diag.HirUnresolvedName, e.Span,
				"undefined name '"+p.in.MustLookup(e.Name)+"'").Emit()
			return
		}
		p.ExprRefs[p.key(m, uint32(id))] = ref

	case ast.ExprIntLit, ast.ExprFloatLit, ast.ExprBoolLit, ast.ExprCharLit,
		ast.ExprStringLit, ast.ExprMultilineStr, ast.ExprPathLit, ast.ExprErroneous:
		// Self-contained literals; nothing to resolve.

	case ast.ExprInterpString:
		for _, seg := range e.Segments {
			if !seg.Literal {
				p.resolveExpr(m, sc, seg.Expr)
			}
		}

	case ast.ExprList, ast.ExprTuple:
		for _, el := range e.Elems {
			p.resolveExpr(m, sc, el)
		}

	case ast.ExprListComp:
		inner := sc.push()
		for _, gen := range e.Generators {
			p.resolveExpr(m, inner, gen.Source)
			p.bindPattern(m, inner, gen.Pattern)
		}
		for _, g := range e.Guards {
			p.resolveExpr(m, inner, g)
		}
		p.resolveExpr(m, inner, e.Body)

	case ast.ExprRecord:
		for _, f := range e.Fields {
			p.resolveExpr(m, sc, f.Value)
		}
		if e.Spread != ast.NoExprID {
			p.resolveExpr(m, sc, e.Spread)
		}

	case ast.ExprLambda:
		inner := sc.push()
		for i, param := range e.Params {
			if param.Type != ast.NoTypeID {
				p.resolveType(m, param.Type)
			}
			local := inner.bind(p, param.Name)
			p.LambdaParamLocals[p.subKey(m, uint32(id), i)] = local
		}
		p.resolveExpr(m, inner, e.Body)

	case ast.ExprCall:
		p.resolveExpr(m, sc, e.Callee)
		for _, arg := range e.Elems {
			p.resolveExpr(m, sc, arg)
		}

	case ast.ExprField, ast.ExprSafeField:
		p.resolveExpr(m, sc, e.Receiver)

	case ast.ExprIndex:
		p.resolveExpr(m, sc, e.Receiver)
		p.resolveExpr(m, sc, e.Index)

	case ast.ExprMatch:
		p.resolveExpr(m, sc, e.Scrutinee)
		for _, arm := range e.Arms {
			armScope := sc.push()
			p.bindPattern(m, armScope, arm.Pattern)
			if arm.Guard != ast.NoExprID {
				p.resolveExpr(m, armScope, arm.Guard)
			}
			p.resolveExpr(m, armScope, arm.Body)
		}

	case ast.ExprIf:
		p.resolveExpr(m, sc, e.Cond)
		p.resolveExpr(m, sc, e.Then)
		if e.Else != ast.NoExprID {
			p.resolveExpr(m, sc, e.Else)
		}

	case ast.ExprBlock:
		inner := sc
		for _, b := range e.Bindings {
			inner = inner.push()
			if b.Type != ast.NoTypeID {
				p.resolveType(m, b.Type)
			}
			p.resolveExpr(m, inner, b.Value)
			p.bindPattern(m, inner, b.Pattern)
		}
		if e.Result != ast.NoExprID {
			p.resolveExpr(m, inner, e.Result)
		}

	case ast.ExprBinary, ast.ExprRange:
		p.resolveExpr(m, sc, e.Left)
		p.resolveExpr(m, sc, e.Right)

	case ast.ExprPipe:
		p.resolveExpr(m, sc, e.Left)
		p.resolveExpr(m, sc, e.Right)

	case ast.ExprUnary, ast.ExprTry:
		p.resolveExpr(m, sc, e.Operand)
	}
}

// bindPattern walks a pattern, binding every name it introduces into sc
// (which must already be the frame meant to hold them) and resolving any
// qualified constructor name it refers to.
func (p *Program) bindPattern(m *Module, sc *scope, id ast.PatternID) {
	if id == ast.NoPatternID || sc == nil {
		return
	}
	pat := m.AST.Patterns.Get(id)
	switch pat.Kind {
	case ast.PatWildcard, ast.PatLit:
		// Nothing to bind.

	case ast.PatIdent:
		// A bare identifier pattern is ambiguous between introducing a new
		// binding and naming a nullary enum variant (there is no
		// capitalization convention to tell them apart syntactically, so
		// the parser always produces PatIdent here). Resolve it against
		// the visible names first: a match against a known enum variant
		// wins over treating the name as a fresh binding.
		if def, ok := m.names[pat.Name]; ok && p.defArena.get(def).Kind == DefEnumVariant {
			p.TypeRefs[p.key(m, uint32(id))] = def
			return
		}
		p.PatternLocals[p.key(m, uint32(id))] = sc.bind(p, pat.Name)

	case ast.PatBind:
		p.PatternLocals[p.key(m, uint32(id))] = sc.bind(p, pat.Name)
		p.bindPattern(m, sc, pat.Inner)

	case ast.PatTuple:
		for _, el := range pat.Elems {
			p.bindPattern(m, sc, el)
		}

	case ast.PatOr:
		// Every alternative must bind the same set of names to make the
		// arm body's scope well-defined regardless of which alternative
		// matched. Bind the first alternative normally, then have every
		// later alternative reuse the first's LocalIDs for names it
		// shares; a structurally different binding set across
		// alternatives is a pattern-well-formedness problem left to later
		// exhaustiveness/binding-consistency checking, not caught here.
		if len(pat.Elems) == 0 {
			return
		}
		shared := sc.push()
		p.bindPattern(m, shared, pat.Elems[0])
		for name, local := range shared.names {
			sc.bindExisting(name, local)
		}
		for _, alt := range pat.Elems[1:] {
			p.bindOrAlternative(m, sc, shared, alt)
		}

	case ast.PatList:
		for _, h := range pat.Head {
			p.bindPattern(m, sc, h)
		}
		if pat.HasRest && pat.RestName != source.NoSymbol {
			p.PatternLocals[p.key(m, uint32(id))] = sc.bind(p, pat.RestName)
		}

	case ast.PatRecord:
		for i, f := range pat.RecordFields {
			if f.Pattern == ast.NoPatternID {
				// `{ x }` shorthand binds `x`; it has no PatternID of its
				// own, so record its LocalID under a sub-key derived from
				// the record pattern's own id and this field's index.
				p.PatternLocals[p.subKey(m, uint32(id), i)] = sc.bind(p, f.Name)
				continue
			}
			p.bindPattern(m, sc, f.Pattern)
		}
		if pat.HasRecordRest && pat.RecordRestName != source.NoSymbol {
			p.PatternLocals[p.key(m, uint32(id))] = sc.bind(p, pat.RecordRestName)
		}

	case ast.PatConstructor:
		if ref, ok := p.lookupName(m, nil, pat.ConstructorName); ok {
			p.TypeRefs[p.key(m, uint32(id))] = ref.Def
		} else {
			diag.ReportError(p.rep, diag.HirUnresolvedName, pat.Span,
				"undefined constructor '"+p.in.MustLookup(pat.ConstructorName)+"'").Emit()
		}
		for _, arg := range pat.Args {
			p.bindPattern(m, sc, arg)
		}
	}
}

// bindTopLevelPattern binds a top-level `let` item's pattern against the
// Defs collectPatternNames already declared for it in phase 1, recording
// each binding occurrence in PatternDefs rather than allocating a LocalID.
func (p *Program) bindTopLevelPattern(m *Module, id ast.PatternID) {
	if id == ast.NoPatternID {
		return
	}
	pat := m.AST.Patterns.Get(id)
	switch pat.Kind {
	case ast.PatWildcard, ast.PatLit:
	case ast.PatIdent:
		if def, ok := m.names[pat.Name]; ok {
			p.PatternDefs[p.key(m, uint32(id))] = def
		}
	case ast.PatBind:
		if def, ok := m.names[pat.Name]; ok {
			p.PatternDefs[p.key(m, uint32(id))] = def
		}
		p.bindTopLevelPattern(m, pat.Inner)
	case ast.PatTuple:
		for _, el := range pat.Elems {
			p.bindTopLevelPattern(m, el)
		}
	case ast.PatOr:
		for _, alt := range pat.Elems {
			p.bindTopLevelPattern(m, alt)
		}
	case ast.PatList:
		for _, h := range pat.Head {
			p.bindTopLevelPattern(m, h)
		}
	case ast.PatRecord:
		for _, f := range pat.RecordFields {
			if f.Pattern != ast.NoPatternID {
				p.bindTopLevelPattern(m, f.Pattern)
			}
		}
	case ast.PatConstructor:
		if ref, ok := p.lookupName(m, nil, pat.ConstructorName); ok {
			p.TypeRefs[p.key(m, uint32(id))] = ref.Def
		} else {
			diag.ReportError(p.rep, diag.HirUnresolvedName, pat.Span,
				"undefined constructor '"+p.in.MustLookup(pat.ConstructorName)+"'").Emit()
		}
		for _, arg := range pat.Args {
			p.bindTopLevelPattern(m, arg)
		}
	}
}

// bindShared binds name in sc to whatever LocalID the first or-pattern
// alternative already gave it in shared, allocating a fresh one only if
// this name wasn't bound there (a structurally inconsistent alternative,
// left to later binding-consistency checking rather than caught here).
func (p *Program) bindShared(sc, shared *scope, name source.Symbol) LocalID {
	if local, ok := shared.lookup(name); ok {
		sc.bindExisting(name, local)
		return local
	}
	return sc.bind(p, name)
}

// bindOrAlternative binds one later or-pattern alternative, aliasing any
// name it shares with the first alternative to that alternative's LocalID
// rather than allocating a fresh one.
func (p *Program) bindOrAlternative(m *Module, sc, shared *scope, id ast.PatternID) {
	if id == ast.NoPatternID {
		return
	}
	pat := m.AST.Patterns.Get(id)
	switch pat.Kind {
	case ast.PatIdent:
		if def, ok := m.names[pat.Name]; ok && p.defArena.get(def).Kind == DefEnumVariant {
			p.TypeRefs[p.key(m, uint32(id))] = def
		} else {
			p.PatternLocals[p.key(m, uint32(id))] = p.bindShared(sc, shared, pat.Name)
		}
	case ast.PatBind:
		p.PatternLocals[p.key(m, uint32(id))] = p.bindShared(sc, shared, pat.Name)
		p.bindOrAlternative(m, sc, shared, pat.Inner)
	case ast.PatTuple:
		for _, el := range pat.Elems {
			p.bindOrAlternative(m, sc, shared, el)
		}
	case ast.PatList:
		for _, h := range pat.Head {
			p.bindOrAlternative(m, sc, shared, h)
		}
		if pat.HasRest && pat.RestName != source.NoSymbol {
			p.PatternLocals[p.key(m, uint32(id))] = p.bindShared(sc, shared, pat.RestName)
		}
	case ast.PatRecord:
		for i, f := range pat.RecordFields {
			local := p.bindShared(sc, shared, f.Name)
			if f.Pattern == ast.NoPatternID {
				p.PatternLocals[p.subKey(m, uint32(id), i)] = local
			} else {
				p.bindOrAlternative(m, sc, shared, f.Pattern)
			}
		}
	case ast.PatConstructor:
		if ref, ok := p.lookupName(m, nil, pat.ConstructorName); ok {
			p.TypeRefs[p.key(m, uint32(id))] = ref.Def
		}
		for _, arg := range pat.Args {
			p.bindOrAlternative(m, sc, shared, arg)
		}
	case ast.PatWildcard, ast.PatLit:
	}
}

func (p *Program) resolveType(m *Module, id ast.TypeID) {
	if id == ast.NoTypeID {
		return
	}
	t := m.AST.Types.Get(id)
	switch t.Kind {
	case ast.TypeName:
		if def, ok := m.names[t.Name]; ok {
			p.TypeRefs[p.key(m, uint32(id))] = def
		}
		// An unresolved type name is reported by internal/sema once kind
		// checking runs, since a handful of names here are builtin
		// primitives (Int, Bool, ...) never collected as Defs.
		for _, arg := range t.TypeArgs {
			p.resolveType(m, arg)
		}
	case ast.TypeTuple, ast.TypeFunction:
		for _, el := range t.Elems {
			p.resolveType(m, el)
		}
		for _, param := range t.Params {
			p.resolveType(m, param)
		}
		p.resolveType(m, t.Ret)
	case ast.TypeListLit:
		p.resolveType(m, t.Elem)
	case ast.TypeRecordLit:
		for _, f := range t.Fields {
			p.resolveType(m, f.Type)
		}
	case ast.TypeSelf:
	case ast.TypeAssoc:
		p.resolveType(m, t.Base)
	}
}

func (p *Program) key(m *Module, node uint32) NodeKey {
	return NodeKey{Module: m.ID, Node: node}
}

// subKey derives a second NodeKey for a sub-position inside node that has
// no PatternID of its own (a record pattern's `{ x }` shorthand field,
// addressed by its index among the pattern's RecordFields). sub is
// 0-based; the encoding reserves node's upper 16 bits for it, which holds
// for any module under 65536 pattern/expr/type nodes - comfortably beyond
// anything a hand-written source file reaches.
func (p *Program) subKey(m *Module, node uint32, sub int) NodeKey {
	return NodeKey{Module: m.ID, Node: node | uint32(sub+1)<<16}
}
