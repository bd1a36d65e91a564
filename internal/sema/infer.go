package sema

import (
	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/hir"
	"neve/internal/types"
)

// infer is Algorithm W over one expression: it returns the TypeID the
// expression was inferred to have, unifying as it descends so every
// subexpression's type is fixed by the time infer returns.
func (c *Checker) infer(m *hir.Module, id ast.ExprID) types.TypeID {
	if id == ast.NoExprID {
		return c.store.Unit
	}
	e := m.AST.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprIdent:
		return c.inferIdent(m, id, e)

	case ast.ExprIntLit:
		return c.store.Int
	case ast.ExprFloatLit:
		return c.store.Float
	case ast.ExprBoolLit:
		return c.store.Bool
	case ast.ExprCharLit:
		return c.store.Char
	case ast.ExprStringLit, ast.ExprMultilineStr:
		return c.store.String
	case ast.ExprPathLit:
		return c.store.Path

	case ast.ExprInterpString:
		for _, seg := range e.Segments {
			if !seg.Literal {
				c.infer(m, seg.Expr)
			}
		}
		return c.store.String

	case ast.ExprList:
		elem := c.newVar()
		for _, el := range e.Elems {
			c.unify(m.AST.Exprs.Get(el).Span, elem, c.infer(m, el))
		}
		return c.store.NewList(elem)

	case ast.ExprListComp:
		return c.inferListComp(m, e)

	case ast.ExprTuple:
		elems := make([]types.TypeID, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = c.infer(m, el)
		}
		return c.store.NewTuple(elems)

	case ast.ExprRecord:
		return c.inferRecord(m, e)

	case ast.ExprLambda:
		return c.inferLambda(m, id, e)

	case ast.ExprCall:
		return c.inferCall(m, e)

	case ast.ExprField, ast.ExprSafeField:
		return c.inferField(m, e)

	case ast.ExprIndex:
		recv := c.infer(m, e.Receiver)
		idx := c.infer(m, e.Index)
		elem := c.newVar()
		c.unify(e.Span, recv, c.store.NewList(elem))
		c.unify(m.AST.Exprs.Get(e.Index).Span, idx, c.store.Int)
		return elem

	case ast.ExprMatch:
		return c.inferMatch(m, e)

	case ast.ExprIf:
		c.unify(m.AST.Exprs.Get(e.Cond).Span, c.infer(m, e.Cond), c.store.Bool)
		thenTy := c.infer(m, e.Then)
		if e.Else == ast.NoExprID {
			return c.store.Unit
		}
		elseTy := c.infer(m, e.Else)
		c.unify(e.Span, thenTy, elseTy)
		return thenTy

	case ast.ExprBlock:
		return c.inferBlock(m, e)

	case ast.ExprBinary:
		return c.inferBinary(m, e)

	case ast.ExprUnary:
		return c.inferUnary(m, e)

	case ast.ExprPipe:
		// `x |> f` desugars to `f(x)`: infer f's type, then unify its first
		// parameter against x's type and return its result.
		fn := c.infer(m, e.Right)
		arg := c.infer(m, e.Left)
		result := c.newVar()
		c.unify(e.Span, fn, c.store.NewFunction([]types.TypeID{arg}, result))
		return result

	case ast.ExprTry:
		// `expr?` unwraps a Result-shaped value, propagating its error arm
		// out of the enclosing fn; absent a concrete Result enum wired up
		// yet, this just returns a fresh variable for the success payload.
		c.infer(m, e.Operand)
		return c.newVar()

	case ast.ExprRange:
		lo := c.infer(m, e.Left)
		hi := c.infer(m, e.Right)
		c.unify(e.Span, lo, c.store.Int)
		c.unify(e.Span, hi, c.store.Int)
		return c.store.NewList(c.store.Int)

	case ast.ExprErroneous:
		return c.newVar()

	default:
		return c.newVar()
	}
}

func (c *Checker) inferIdent(m *hir.Module, id ast.ExprID, e *ast.Expr) types.TypeID {
	ref, ok := c.prog.ExprRefs[hir.NodeKey{Module: m.ID, Node: uint32(id)}]
	if !ok {
		// hir already reported an unresolved-name diagnostic for this
		// node (or it's a self/super/crate-qualified path hir defers);
		// don't double-report here.
		return c.newVar()
	}
	switch ref.Kind {
	case hir.RefLocal:
		if t, ok := c.localTypes[ref.Local]; ok {
			return t
		}
		return c.newVar()
	case hir.RefDef:
		if scheme, ok := c.schemes[ref.Def]; ok {
			t, bounds := scheme.Instantiate(c.store, c.level)
			_ = bounds // trait-bound discharge deferred until impls carry method bodies to check against
			return t
		}
		if t, ok := c.sigs[ref.Def]; ok {
			return t
		}
		return c.newVar()
	default:
		return c.newVar()
	}
}

func (c *Checker) inferListComp(m *hir.Module, e *ast.Expr) types.TypeID {
	for _, gen := range e.Generators {
		src := c.infer(m, gen.Source)
		elem := c.newVar()
		c.unify(m.AST.Exprs.Get(gen.Source).Span, src, c.store.NewList(elem))
		c.checkPattern(m, gen.Pattern, elem)
	}
	for _, g := range e.Guards {
		c.unify(m.AST.Exprs.Get(g).Span, c.infer(m, g), c.store.Bool)
	}
	return c.store.NewList(c.infer(m, e.Body))
}

func (c *Checker) inferRecord(m *hir.Module, e *ast.Expr) types.TypeID {
	fields := make([]types.RecordField, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = types.RecordField{Name: f.Name, Type: c.infer(m, f.Value)}
	}
	row := types.NoTypeID
	if e.Spread != ast.NoExprID {
		row = c.newVar()
		c.unify(m.AST.Exprs.Get(e.Spread).Span, c.infer(m, e.Spread), c.store.NewRecord(nil, row))
	}
	return c.store.NewRecord(fields, row)
}

func (c *Checker) inferCall(m *hir.Module, e *ast.Expr) types.TypeID {
	fn := c.infer(m, e.Callee)
	args := make([]types.TypeID, len(e.Elems))
	for i, a := range e.Elems {
		args[i] = c.infer(m, a)
	}
	result := c.newVar()
	c.unify(e.Span, fn, c.store.NewFunction(args, result))
	return result
}

// inferField infers a `.field` (or `?.field`) access against an open
// record row: the receiver only needs to have at least this field, so
// unification adds it to a fresh row variable rather than requiring the
// receiver's exact shape be known yet. Without a built-in Option type
// wired through this checker yet, `?.` infers the same result type as a
// plain `.` access rather than wrapping it — see DESIGN.md.
func (c *Checker) inferField(m *hir.Module, e *ast.Expr) types.TypeID {
	recv := c.infer(m, e.Receiver)
	field := c.newVar()
	row := c.newVar()
	c.unify(e.Span, recv, c.store.NewRecord([]types.RecordField{{Name: e.FieldN, Type: field}}, row))
	return field
}

func (c *Checker) inferMatch(m *hir.Module, e *ast.Expr) types.TypeID {
	scrutinee := c.infer(m, e.Scrutinee)
	result := c.newVar()
	for _, arm := range e.Arms {
		c.checkPattern(m, arm.Pattern, scrutinee)
		if arm.Guard != ast.NoExprID {
			c.unify(m.AST.Exprs.Get(arm.Guard).Span, c.infer(m, arm.Guard), c.store.Bool)
		}
		c.unify(arm.Span, result, c.infer(m, arm.Body))
	}
	c.checkExhaustive(m, e, scrutinee)
	return result
}

func (c *Checker) inferBlock(m *hir.Module, e *ast.Expr) types.TypeID {
	for _, b := range e.Bindings {
		valTy := c.infer(m, b.Value)
		if b.Type != ast.NoTypeID {
			c.unify(m.AST.Exprs.Get(b.Value).Span, valTy, c.elaborate(m, b.Type, nil))
		}
		c.checkPattern(m, b.Pattern, valTy)
	}
	if e.Result == ast.NoExprID {
		return c.store.Unit
	}
	return c.infer(m, e.Result)
}

func (c *Checker) inferBinary(m *hir.Module, e *ast.Expr) types.TypeID {
	lt := c.infer(m, e.Left)
	rt := c.infer(m, e.Right)
	switch e.BinOp {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpPow, ast.OpFloorDiv:
		c.unify(e.Span, lt, rt)
		return lt
	case ast.OpConcat:
		c.unify(e.Span, lt, rt)
		return lt
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		c.unify(e.Span, lt, rt)
		return c.store.Bool
	case ast.OpAnd, ast.OpOr:
		c.unify(e.Span, lt, c.store.Bool)
		c.unify(e.Span, rt, c.store.Bool)
		return c.store.Bool
	case ast.OpCoalesce:
		c.unify(e.Span, lt, rt)
		return lt
	default:
		c.errorf(e.Span, diag.TypeMismatch, "unknown operator")
		return c.newVar()
	}
}

func (c *Checker) inferUnary(m *hir.Module, e *ast.Expr) types.TypeID {
	operand := c.infer(m, e.Operand)
	if e.UnOp == ast.OpNot {
		c.unify(e.Span, operand, c.store.Bool)
		return c.store.Bool
	}
	return operand
}

func (c *Checker) inferLambda(m *hir.Module, id ast.ExprID, e *ast.Expr) types.TypeID {
	params := make([]types.TypeID, len(e.Params))
	for i, p := range e.Params {
		pt := c.elaborate(m, p.Type, nil)
		params[i] = pt
		if local, ok := c.prog.LambdaParamLocals[hir.NodeKey{Module: m.ID, Node: uint32(id) | uint32(i+1)<<16}]; ok {
			c.localTypes[local] = pt
		}
	}
	result := c.infer(m, e.Body)
	return c.store.NewFunction(params, result)
}
