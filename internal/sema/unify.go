package sema

import (
	"neve/internal/diag"
	"neve/internal/source"
	"neve/internal/types"
)

// unify makes a and b describe the same type, binding unbound variables in
// place (via the Store's union-find Link field) as needed. Reports a
// diagnostic and returns false on the first mismatch; callers still get a
// best-effort type back (via Resolve) rather than a hard abort, so checking
// can continue past one error and surface more in a single run.
func (c *Checker) unify(span source.Span, a, b types.TypeID) bool {
	a = c.store.Resolve(a)
	b = c.store.Resolve(b)
	if a == b {
		return true
	}
	ta, tb := c.store.Get(a), c.store.Get(b)

	if ta.Kind == types.KindVar {
		return c.bindVar(span, a, b)
	}
	if tb.Kind == types.KindVar {
		return c.bindVar(span, b, a)
	}
	if ta.Kind != tb.Kind {
		c.mismatch(span, a, b)
		return false
	}

	switch ta.Kind {
	case types.KindUnit, types.KindBool, types.KindInt, types.KindFloat, types.KindString, types.KindChar, types.KindPath:
		return true

	case types.KindList:
		return c.unify(span, ta.Elem, tb.Elem)

	case types.KindTuple:
		if len(ta.Elems) != len(tb.Elems) {
			c.errorf(span, diag.TypeArityMismatch, "tuples of different length")
			return false
		}
		ok := true
		for i := range ta.Elems {
			if !c.unify(span, ta.Elems[i], tb.Elems[i]) {
				ok = false
			}
		}
		return ok

	case types.KindFunction:
		if len(ta.Elems) != len(tb.Elems) {
			c.errorf(span, diag.TypeArityMismatch, "functions take a different number of arguments")
			return false
		}
		ok := true
		for i := range ta.Elems {
			if !c.unify(span, ta.Elems[i], tb.Elems[i]) {
				ok = false
			}
		}
		return c.unify(span, ta.Elem, tb.Elem) && ok

	case types.KindRecord:
		return c.unifyRecords(span, a, b)

	case types.KindConstructor:
		if ta.Name != tb.Name || ta.Def != tb.Def {
			c.mismatch(span, a, b)
			return false
		}
		if len(ta.Elems) != len(tb.Elems) {
			c.errorf(span, diag.TypeArityMismatch, "type takes a different number of type arguments")
			return false
		}
		ok := true
		for i := range ta.Elems {
			if !c.unify(span, ta.Elems[i], tb.Elems[i]) {
				ok = false
			}
		}
		return ok

	default:
		c.mismatch(span, a, b)
		return false
	}
}

// bindVar binds the unbound variable at varID (already confirmed to be a
// KindVar with no Link) to target, after an occurs check that rejects a
// cyclic type like `t0 = List<t0>`, and promotes target's variables to
// varID's level where target was built at a deeper let-nesting than varID
// (the standard level-based generalization safety check: a variable must
// never end up referring to another variable that will go out of scope
// before it does).
func (c *Checker) bindVar(span source.Span, varID, target types.TypeID) bool {
	target = c.store.Resolve(target)
	if varID == target {
		return true
	}
	if c.occurs(varID, target) {
		c.errorf(span, diag.TypeOccursCheck, "infinite type")
		return false
	}
	v := c.store.Get(varID)
	c.lowerLevel(target, v.Level)
	v.Link = target
	return true
}

// occurs reports whether varID appears anywhere inside target, directly
// preventing the self-referential types unification would otherwise build
// (`t0` unified with `List<t0>` would make Resolve loop forever).
func (c *Checker) occurs(varID, target types.TypeID) bool {
	target = c.store.Resolve(target)
	if varID == target {
		return true
	}
	t := c.store.Get(target)
	switch t.Kind {
	case types.KindList:
		return c.occurs(varID, t.Elem)
	case types.KindTuple:
		return c.occursAny(varID, t.Elems)
	case types.KindFunction:
		return c.occursAny(varID, t.Elems) || c.occurs(varID, t.Elem)
	case types.KindRecord:
		for _, f := range t.Fields {
			if c.occurs(varID, f.Type) {
				return true
			}
		}
		if t.RowVar != types.NoTypeID {
			return c.occurs(varID, t.RowVar)
		}
		return false
	case types.KindConstructor:
		return c.occursAny(varID, t.Elems)
	default:
		return false
	}
}

func (c *Checker) occursAny(varID types.TypeID, ids []types.TypeID) bool {
	for _, id := range ids {
		if c.occurs(varID, id) {
			return true
		}
	}
	return false
}

// lowerLevel pulls every unbound variable inside target down to at most
// level, the level of the variable it's about to be linked from. Without
// this, a variable created inside a deeper let would keep a level newer
// than the outer binding now pointing at it, and generalization (which
// quantifies exactly the variables whose level is deeper than its own let)
// would wrongly generalize over it after the outer let returns.
func (c *Checker) lowerLevel(id types.TypeID, level uint32) {
	id = c.store.Resolve(id)
	t := c.store.Get(id)
	switch t.Kind {
	case types.KindVar:
		if t.Level > level {
			t.Level = level
		}
	case types.KindList:
		c.lowerLevel(t.Elem, level)
	case types.KindTuple:
		for _, e := range t.Elems {
			c.lowerLevel(e, level)
		}
	case types.KindFunction:
		for _, p := range t.Elems {
			c.lowerLevel(p, level)
		}
		c.lowerLevel(t.Elem, level)
	case types.KindRecord:
		for _, f := range t.Fields {
			c.lowerLevel(f.Type, level)
		}
		if t.RowVar != types.NoTypeID {
			c.lowerLevel(t.RowVar, level)
		}
	case types.KindConstructor:
		for _, a := range t.Elems {
			c.lowerLevel(a, level)
		}
	}
}

// unifyRecords unifies two record types under row polymorphism: fields
// present in both must unify; a field present in only one side is pushed
// into the other side's row variable, if it has one, rather than failing
// outright — this is what lets `fn name(r) -> r.name` accept any record
// with at least a `name` field.
func (c *Checker) unifyRecords(span source.Span, a, b types.TypeID) bool {
	ta, tb := c.store.Get(a), c.store.Get(b)
	aFields := fieldMap(ta.Fields)
	bFields := fieldMap(tb.Fields)

	ok := true
	var onlyA, onlyB []types.RecordField
	for _, f := range ta.Fields {
		if bf, found := bFields[f.Name]; found {
			if !c.unify(span, f.Type, bf) {
				ok = false
			}
		} else {
			onlyA = append(onlyA, f)
		}
	}
	for _, f := range tb.Fields {
		if _, found := aFields[f.Name]; !found {
			onlyB = append(onlyB, f)
		}
	}

	switch {
	case len(onlyA) == 0 && len(onlyB) == 0:
		return c.unifyRows(span, ta.RowVar, tb.RowVar) && ok
	case len(onlyA) > 0 && tb.RowVar != types.NoTypeID:
		return c.unify(span, tb.RowVar, c.store.NewRecord(onlyA, ta.RowVar)) && ok
	case len(onlyB) > 0 && ta.RowVar != types.NoTypeID:
		return c.unify(span, ta.RowVar, c.store.NewRecord(onlyB, tb.RowVar)) && ok
	default:
		c.errorf(span, diag.TypeMismatch, "records have incompatible fields")
		return false
	}
}

func (c *Checker) unifyRows(span source.Span, a, b types.TypeID) bool {
	if a == types.NoTypeID && b == types.NoTypeID {
		return true
	}
	if a == types.NoTypeID || b == types.NoTypeID {
		c.errorf(span, diag.TypeMismatch, "one record is closed and the other is open")
		return false
	}
	return c.unify(span, a, b)
}

func fieldMap(fields []types.RecordField) map[source.Symbol]types.TypeID {
	m := make(map[source.Symbol]types.TypeID, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Type
	}
	return m
}

func (c *Checker) mismatch(span source.Span, a, b types.TypeID) {
	c.errorf(span, diag.TypeMismatch, "type mismatch: "+types.Label(c.in, c.store, a)+" vs "+types.Label(c.in, c.store, b))
}
