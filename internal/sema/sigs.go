package sema

import (
	"neve/internal/ast"
	"neve/internal/hir"
	"neve/internal/source"
	"neve/internal/types"
)

// assignSignatures gives every top-level fn and let a monomorphic
// (unquantified) type before any body is checked, so mutually recursive
// top-level definitions can call each other: `fn even(n)` can refer to
// `odd` before `odd`'s own body has been inferred, because `odd` already
// has a signature (possibly still full of fresh, not-yet-solved
// variables) to call it against. Generalization happens afterward, in
// checkBodies, once every body that could have constrained those
// variables has been checked.
//
// Enum variant constructors don't go through this pass at all: their
// signature is already fully known from the enum's own declaration
// (collectEnum builds and generalizes it immediately, since it never
// depends on any value-level body).
func (c *Checker) assignSignatures(m *hir.Module) {
	// Signature variables sit one level deeper than the top level, so the
	// generalize call after each body can quantify them.
	c.level++
	defer func() { c.level-- }()
	for _, defID := range m.Defs {
		def := c.prog.Def(defID)
		item := m.AST.Items.Get(def.Item)
		switch def.Kind {
		case hir.DefFn:
			c.sigs[defID] = c.fnSignature(m, item.Generics, item.Params, item.RetType, nil)
		case hir.DefLet:
			if item.Pattern != ast.NoPatternID && m.AST.Patterns.Get(item.Pattern).Kind == ast.PatIdent {
				c.sigs[defID] = c.newVar()
			}
		}
	}
	// Impl methods are not walked above (they hang off the impl's own
	// ImplMethods list, not m.Defs's flat Kind switch), but collectImpl
	// already gave each one a DefID via declareUnnamed; give them
	// signatures here by walking each impl item directly.
	for _, defID := range m.Defs {
		def := c.prog.Def(defID)
		if def.Kind != hir.DefImpl {
			continue
		}
		item := m.AST.Items.Get(def.Item)
		vars, _ := c.genericVarsFor(item.Generics)
		for _, methID := range item.ImplMethods {
			meth := m.AST.Items.Get(methID)
			methDefID := c.defByItemID(m, methID)
			if methDefID.IsValid() {
				c.sigs[methDefID] = c.fnSignature(m, nil, meth.Params, meth.RetType, vars)
			}
		}
	}
}

// fnSignature elaborates a fn's declared parameter/return types, using a
// fresh variable for anything left unannotated (a lambda parameter with no
// `: Type`, or an omitted return type) so the body can still be checked
// against a concrete (if partly unresolved) function type. extraVars seeds
// the elaboration with generic variables from an enclosing impl, so a
// method's `Self`/impl-generic references resolve.
func (c *Checker) fnSignature(m *hir.Module, generics []ast.GenericParam, params []ast.Param, retType ast.TypeID, extraVars map[source.Symbol]types.TypeID) types.TypeID {
	vars, _ := c.genericVarsFor(generics)
	for k, v := range extraVars {
		vars[k] = v
	}
	paramTypes := make([]types.TypeID, len(params))
	for i, p := range params {
		paramTypes[i] = c.elaborate(m, p.Type, vars)
	}
	return c.store.NewFunction(paramTypes, c.elaborate(m, retType, vars))
}
