package sema

import (
	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/hir"
	"neve/internal/source"
	"neve/internal/types"
)

// elaborate turns a syntactic TypeExpr into a types.TypeID. genericVars
// maps the names of whatever generic parameters are in scope (a struct's,
// enum's, fn's, or trait's own `<T, U>` list, plus "Self" inside a trait or
// impl) to the template/placeholder variable standing in for them; a name
// not found there is resolved against internal/hir's TypeRefs side-table
// instead, as a reference to a previously-elaborated nominal declaration.
func (c *Checker) elaborate(m *hir.Module, id ast.TypeID, genericVars map[source.Symbol]types.TypeID) types.TypeID {
	if id == ast.NoTypeID {
		return c.newVar()
	}
	t := m.AST.Types.Get(id)
	switch t.Kind {
	case ast.TypeName:
		return c.elaborateName(m, id, t, genericVars)

	case ast.TypeTuple:
		elems := make([]types.TypeID, len(t.Elems))
		for i, el := range t.Elems {
			elems[i] = c.elaborate(m, el, genericVars)
		}
		return c.store.NewTuple(elems)

	case ast.TypeListLit:
		return c.store.NewList(c.elaborate(m, t.Elem, genericVars))

	case ast.TypeRecordLit:
		fields := make([]types.RecordField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = types.RecordField{Name: f.Name, Type: c.elaborate(m, f.Type, genericVars)}
		}
		row := types.NoTypeID
		if t.OpenRow {
			row = c.newVar()
		}
		return c.store.NewRecord(fields, row)

	case ast.TypeFunction:
		params := make([]types.TypeID, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.elaborate(m, p, genericVars)
		}
		return c.store.NewFunction(params, c.elaborate(m, t.Ret, genericVars))

	case ast.TypeSelf:
		if v, ok := genericVars[c.selfSymbol()]; ok {
			return v
		}
		c.errorf(t.Span, diag.TypeUnboundVariable, "'Self' used outside a trait or impl")
		return c.newVar()

	case ast.TypeAssoc:
		// Associated types are tracked nominally (the declaration that
		// names them, and each impl's binding) but not substituted through
		// a `Self.Item`-shaped reference; a fresh variable stands in for
		// it here, which is sound but loses precision an associated-type
		// system proper would keep. See DESIGN.md.
		c.elaborate(m, t.Base, genericVars)
		return c.newVar()

	default:
		return c.newVar()
	}
}

func (c *Checker) elaborateName(m *hir.Module, id ast.TypeID, t *ast.TypeExpr, genericVars map[source.Symbol]types.TypeID) types.TypeID {
	if v, ok := genericVars[t.Name]; ok {
		return v
	}

	switch c.in.MustLookup(t.Name) {
	case "Int":
		return c.store.Int
	case "Float":
		return c.store.Float
	case "Bool":
		return c.store.Bool
	case "String":
		return c.store.String
	case "Char":
		return c.store.Char
	case "Path":
		return c.store.Path
	case "Unit":
		return c.store.Unit
	case "List":
		if len(t.TypeArgs) == 1 {
			return c.store.NewList(c.elaborate(m, t.TypeArgs[0], genericVars))
		}
	}

	def, ok := c.prog.TypeRefs[hir.NodeKey{Module: m.ID, Node: uint32(id)}]
	if !ok {
		c.errorf(t.Span, diag.TypeUnboundVariable, "unknown type '"+c.in.MustLookup(t.Name)+"'")
		return c.newVar()
	}
	args := make([]types.TypeID, len(t.TypeArgs))
	for i, a := range t.TypeArgs {
		args[i] = c.elaborate(m, a, genericVars)
	}

	if al, ok := c.aliases[def]; ok {
		mapping := make(map[types.VarID]types.TypeID, len(al.genericVars))
		for i, v := range al.genericVars {
			if i < len(args) {
				mapping[v] = args[i]
			}
		}
		return c.store.Substitute(al.target, mapping)
	}
	return c.store.NewConstructor(t.Name, uint32(def), args)
}

func (c *Checker) selfSymbol() source.Symbol {
	if c.selfSym == source.NoSymbol {
		c.selfSym = c.in.Intern("Self")
	}
	return c.selfSym
}
