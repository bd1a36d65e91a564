package sema

import (
	"neve/internal/ast"
	"neve/internal/hir"
	"neve/internal/types"
)

// checkBodies infers every top-level fn/let body (and every impl method
// body) against the signature assignSignatures already gave it, then
// generalizes the result into a Scheme. Running after every module's
// signatures are assigned means one module's body can freely call a
// def declared in another, or one declared later in its own module,
// regardless of load order.
func (c *Checker) checkBodies(m *hir.Module) {
	for _, defID := range m.Defs {
		def := c.prog.Def(defID)
		switch def.Kind {
		case hir.DefFn:
			c.checkFnBody(m, defID, def.Item)
		case hir.DefLet:
			c.checkLetBody(m, defID, def.Item)
		case hir.DefImpl:
			item := m.AST.Items.Get(def.Item)
			for _, methID := range item.ImplMethods {
				if methDefID := c.defByItemID(m, methID); methDefID.IsValid() {
					c.checkFnBody(m, methDefID, methID)
				}
			}
		}
	}
}

func (c *Checker) checkFnBody(m *hir.Module, defID hir.DefID, itemID ast.ItemID) {
	sigID, ok := c.sigs[defID]
	if !ok {
		return
	}
	item := m.AST.Items.Get(itemID)
	if item.Body == ast.NoExprID {
		// An abstract trait method signature with no default body.
		c.schemes[defID] = c.generalize(sigID)
		return
	}

	outer := c.level
	c.level++

	sig := c.store.Get(c.store.Resolve(sigID))
	for i := range item.Params {
		if i >= len(sig.Elems) {
			break
		}
		if local, ok := c.prog.FnParamLocals[hir.NodeKey{Module: m.ID, Node: uint32(itemID) | uint32(i+1)<<16}]; ok {
			c.localTypes[local] = sig.Elems[i]
		}
	}

	bodyTy := c.infer(m, item.Body)
	c.unify(m.AST.Exprs.Get(item.Body).Span, bodyTy, sig.Elem)

	c.level = outer
	c.schemes[defID] = c.generalize(sigID)
}

func (c *Checker) checkLetBody(m *hir.Module, defID hir.DefID, itemID ast.ItemID) {
	if c.checkedLets[itemID] {
		return
	}
	c.checkedLets[itemID] = true

	item := m.AST.Items.Get(itemID)
	if item.Value == ast.NoExprID {
		return
	}

	outer := c.level
	c.level++

	valTy := c.infer(m, item.Value)
	if item.Type != ast.NoTypeID {
		c.unify(m.AST.Exprs.Get(item.Value).Span, valTy, c.elaborate(m, item.Type, nil))
	}

	if sigID, ok := c.sigs[defID]; ok {
		// The plain-identifier case: defID names the whole let.
		c.unify(m.AST.Exprs.Get(item.Value).Span, valTy, sigID)
		c.level = outer
		c.schemes[defID] = c.generalize(sigID)
		return
	}

	// A destructuring let (`let (a, b) = pair;`): every bound name has its
	// own DefID, discovered via PatternDefs as checkTopLevelPattern walks
	// the pattern's shape against valTy.
	bindings := map[hir.DefID]types.TypeID{}
	c.checkTopLevelPattern(m, item.Pattern, valTy, bindings)
	c.level = outer
	for boundDef, ty := range bindings {
		c.schemes[boundDef] = c.generalize(ty)
	}
}

// checkTopLevelPattern is checkPattern's counterpart for a top-level let's
// pattern: bindings are looked up in hir's PatternDefs (one DefID per bound
// name, declared in phase 1) rather than PatternLocals, and recorded into
// out for the caller to generalize once checking finishes, instead of
// localTypes.
func (c *Checker) checkTopLevelPattern(m *hir.Module, id ast.PatternID, scrutinee types.TypeID, out map[hir.DefID]types.TypeID) {
	if id == ast.NoPatternID {
		return
	}
	pat := m.AST.Patterns.Get(id)
	key := hir.NodeKey{Module: m.ID, Node: uint32(id)}

	switch pat.Kind {
	case ast.PatIdent:
		if def, ok := c.prog.PatternDefs[key]; ok {
			out[def] = scrutinee
		}
	case ast.PatBind:
		if def, ok := c.prog.PatternDefs[key]; ok {
			out[def] = scrutinee
		}
		c.checkTopLevelPattern(m, pat.Inner, scrutinee, out)
	case ast.PatTuple:
		elems := make([]types.TypeID, len(pat.Elems))
		for i := range elems {
			elems[i] = c.newVar()
		}
		c.unify(pat.Span, scrutinee, c.store.NewTuple(elems))
		for i, el := range pat.Elems {
			c.checkTopLevelPattern(m, el, elems[i], out)
		}
	case ast.PatList:
		elem := c.newVar()
		c.unify(pat.Span, scrutinee, c.store.NewList(elem))
		for _, h := range pat.Head {
			c.checkTopLevelPattern(m, h, elem, out)
		}
	case ast.PatRecord:
		row := c.newVar()
		fields := make([]types.RecordField, 0, len(pat.RecordFields))
		for _, f := range pat.RecordFields {
			ft := c.newVar()
			fields = append(fields, types.RecordField{Name: f.Name, Type: ft})
			if f.Pattern != ast.NoPatternID {
				c.checkTopLevelPattern(m, f.Pattern, ft, out)
			}
		}
		c.unify(pat.Span, scrutinee, c.store.NewRecord(fields, row))
	case ast.PatOr:
		for _, alt := range pat.Elems {
			c.checkTopLevelPattern(m, alt, scrutinee, out)
		}
	}
}

// generalize quantifies every free variable in ty whose Level is deeper
// than the checker's current (post-body) level — the standard levels
// technique: a variable only this def's own body could have created stays
// bound to it; anything shallower was already free before this def was
// checked and must not be generalized over.
func (c *Checker) generalize(ty types.TypeID) types.Scheme {
	seen := map[types.VarID]bool{}
	var vars []types.VarID
	c.collectGeneralizable(ty, c.level, seen, &vars)
	return types.Scheme{Vars: vars, Type: ty}
}

func (c *Checker) collectGeneralizable(id types.TypeID, level uint32, seen map[types.VarID]bool, out *[]types.VarID) {
	id = c.store.Resolve(id)
	t := c.store.Get(id)
	switch t.Kind {
	case types.KindVar:
		if t.Level > level && !seen[t.VarID] {
			seen[t.VarID] = true
			*out = append(*out, t.VarID)
		}
	case types.KindList:
		c.collectGeneralizable(t.Elem, level, seen, out)
	case types.KindTuple:
		for _, e := range t.Elems {
			c.collectGeneralizable(e, level, seen, out)
		}
	case types.KindFunction:
		for _, p := range t.Elems {
			c.collectGeneralizable(p, level, seen, out)
		}
		c.collectGeneralizable(t.Elem, level, seen, out)
	case types.KindRecord:
		for _, f := range t.Fields {
			c.collectGeneralizable(f.Type, level, seen, out)
		}
		if t.RowVar != types.NoTypeID {
			c.collectGeneralizable(t.RowVar, level, seen, out)
		}
	case types.KindConstructor:
		for _, a := range t.Elems {
			c.collectGeneralizable(a, level, seen, out)
		}
	}
}
