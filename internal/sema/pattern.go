package sema

import (
	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/hir"
	"neve/internal/types"
)

// checkPattern infers/checks a pattern against scrutinee, recording every
// local it binds into c.localTypes (via hir's PatternLocals/subKey side
// tables) so the arm body can look bound names' types up by LocalID.
func (c *Checker) checkPattern(m *hir.Module, id ast.PatternID, scrutinee types.TypeID) {
	if id == ast.NoPatternID {
		return
	}
	pat := m.AST.Patterns.Get(id)
	key := hir.NodeKey{Module: m.ID, Node: uint32(id)}

	switch pat.Kind {
	case ast.PatWildcard:

	case ast.PatLit:
		c.checkLitPattern(m, pat.LitExpr, scrutinee)

	case ast.PatIdent:
		if def, ok := c.prog.TypeRefs[key]; ok {
			// A bare name that hir resolved to a nullary enum variant, not
			// a fresh binding.
			c.checkConstructorPattern(m, id, def, nil, scrutinee)
			return
		}
		if local, ok := c.prog.PatternLocals[key]; ok {
			c.localTypes[local] = scrutinee
		}

	case ast.PatBind:
		if local, ok := c.prog.PatternLocals[key]; ok {
			c.localTypes[local] = scrutinee
		}
		c.checkPattern(m, pat.Inner, scrutinee)

	case ast.PatTuple:
		elems := make([]types.TypeID, len(pat.Elems))
		for i := range elems {
			elems[i] = c.newVar()
		}
		c.unify(pat.Span, scrutinee, c.store.NewTuple(elems))
		for i, el := range pat.Elems {
			c.checkPattern(m, el, elems[i])
		}

	case ast.PatOr:
		for _, alt := range pat.Elems {
			c.checkPattern(m, alt, scrutinee)
		}

	case ast.PatList:
		elem := c.newVar()
		c.unify(pat.Span, scrutinee, c.store.NewList(elem))
		for _, h := range pat.Head {
			c.checkPattern(m, h, elem)
		}
		if pat.HasRest {
			if local, ok := c.prog.PatternLocals[key]; ok {
				c.localTypes[local] = c.store.NewList(elem)
			}
		}

	case ast.PatRecord:
		row := c.newVar()
		fields := make([]types.RecordField, 0, len(pat.RecordFields))
		for i, f := range pat.RecordFields {
			ft := c.newVar()
			fields = append(fields, types.RecordField{Name: f.Name, Type: ft})
			if f.Pattern == ast.NoPatternID {
				if local, ok := c.prog.PatternLocals[hir.NodeKey{Module: m.ID, Node: uint32(id) | uint32(i+1)<<16}]; ok {
					c.localTypes[local] = ft
				}
				continue
			}
			c.checkPattern(m, f.Pattern, ft)
		}
		c.unify(pat.Span, scrutinee, c.store.NewRecord(fields, row))
		if pat.HasRecordRest {
			if local, ok := c.prog.PatternLocals[key]; ok {
				c.localTypes[local] = c.store.NewRecord(nil, row)
			}
		}

	case ast.PatConstructor:
		def, ok := c.prog.TypeRefs[key]
		if !ok {
			return
		}
		c.checkConstructorPattern(m, id, def, pat.Args, scrutinee)
	}
}

func (c *Checker) checkLitPattern(m *hir.Module, litExpr ast.ExprID, scrutinee types.TypeID) {
	if litExpr == ast.NoExprID {
		return
	}
	lit := c.infer(m, litExpr)
	c.unify(m.AST.Exprs.Get(litExpr).Span, scrutinee, lit)
}

// checkConstructorPattern matches a variant/constructor pattern (`Some(x)`,
// a nullary `None`, or `Point { x, y }`) against scrutinee, instantiating
// the variant's own generic parameters fresh for this occurrence and
// unifying its result type with scrutinee before descending into the
// pattern's own arguments.
func (c *Checker) checkConstructorPattern(m *hir.Module, id ast.PatternID, def hir.DefID, args []ast.PatternID, scrutinee types.TypeID) {
	scheme, ok := c.schemes[def]
	if !ok {
		c.errorf(m.AST.Patterns.Get(id).Span, diag.TypeUnboundVariable, "unknown constructor")
		return
	}
	instTy, _ := scheme.Instantiate(c.store, c.level)
	resolved := c.store.Resolve(instTy)
	t := c.store.Get(resolved)

	var result types.TypeID
	var params []types.TypeID
	if t.Kind == types.KindFunction {
		result = t.Elem
		params = t.Elems
	} else {
		result = resolved
	}
	c.unify(m.AST.Patterns.Get(id).Span, scrutinee, result)

	for i, arg := range args {
		if i < len(params) {
			c.checkPattern(m, arg, params[i])
		} else {
			c.checkPattern(m, arg, c.newVar())
		}
	}
}
