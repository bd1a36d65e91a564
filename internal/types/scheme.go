package types

import "neve/internal/source"

// Bound is one trait a quantified variable is required to satisfy, e.g. the
// `T: Show` in `fn describe<T: Show>(x: T) -> String`.
type Bound struct {
	Var   VarID
	Trait source.Symbol
}

// Scheme is a let-bound name's generalized type: a type with some of its
// variables universally quantified, each optionally constrained by one or
// more trait bounds. A Scheme with no Vars is monomorphic.
//
// Schemes are kept separate from Type/Store rather than folding
// quantification into Kind, since only let-bound names (and top-level fn
// declarations) are ever generalized — ordinary subexpressions just carry
// a bare TypeID, and giving every Type a quantifier field would make the
// common case pay for the rare one.
type Scheme struct {
	Vars   []VarID
	Bounds []Bound
	Type   TypeID
}

// Mono wraps a type with no quantified variables.
func Mono(t TypeID) Scheme {
	return Scheme{Type: t}
}

// BoundsFor returns the trait bounds declared on v, in declaration order.
func (s Scheme) BoundsFor(v VarID) []source.Symbol {
	var out []source.Symbol
	for _, b := range s.Bounds {
		if b.Var == v {
			out = append(out, b.Trait)
		}
	}
	return out
}

// Instantiate produces a fresh, unquantified TypeID for one use of a
// Scheme, replacing every quantified variable with a brand-new one at the
// given level (so each call site of a polymorphic function gets its own
// variables to unify independently — instantiating `fn id<T>(x: T) -> T`
// twice must not force both call sites to the same T).
//
// The returned bounds describe the obligations the fresh variables
// inherited, for the caller to discharge against the argument types it
// unifies them with.
func (s Scheme) Instantiate(store *Store, level uint32) (TypeID, []Bound) {
	if len(s.Vars) == 0 {
		return s.Type, nil
	}
	fresh := make(map[VarID]TypeID, len(s.Vars))
	for _, v := range s.Vars {
		fresh[v] = store.NewVar(level)
	}
	bounds := make([]Bound, 0, len(s.Bounds))
	for _, b := range s.Bounds {
		if id, ok := fresh[b.Var]; ok {
			bounds = append(bounds, Bound{Var: store.Get(id).VarID, Trait: b.Trait})
		}
	}
	return substitute(store, s.Type, fresh), bounds
}

// Substitute replaces, within the type named by id, every variable that is
// a key of mapping with its mapped replacement, leaving every other
// variable and structure shared rather than copied. Scheme.Instantiate
// uses this with a freshly generated mapping; callers elaborating a
// nominal declaration's own generic parameters at a use site (a type
// alias's target, a struct's field types, an enum variant's payload) use
// it directly with the concrete type arguments given at that use site.
func (s *Store) Substitute(id TypeID, mapping map[VarID]TypeID) TypeID {
	return substitute(s, id, mapping)
}

// substitute copies t, replacing every quantified variable it finds with
// its fresh replacement. Non-quantified variables and already-resolved
// structure are shared, not copied, since they're never mutated through
// the copy (only through the original chain the rest of inference also
// sees).
func substitute(store *Store, id TypeID, fresh map[VarID]TypeID) TypeID {
	id = store.Resolve(id)
	t := *store.Get(id)
	switch t.Kind {
	case KindVar:
		if rep, ok := fresh[t.VarID]; ok {
			return rep
		}
		return id
	case KindList:
		return store.NewList(substitute(store, t.Elem, fresh))
	case KindTuple:
		return store.NewTuple(substituteAll(store, t.Elems, fresh))
	case KindRecord:
		fields := make([]RecordField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = RecordField{Name: f.Name, Type: substitute(store, f.Type, fresh)}
		}
		row := t.RowVar
		if row != NoTypeID {
			row = substitute(store, row, fresh)
		}
		return store.NewRecord(fields, row)
	case KindFunction:
		return store.NewFunction(substituteAll(store, t.Elems, fresh), substitute(store, t.Elem, fresh))
	case KindConstructor:
		return store.NewConstructor(t.Name, t.Def, substituteAll(store, t.Elems, fresh))
	default:
		return id
	}
}

func substituteAll(store *Store, ids []TypeID, fresh map[VarID]TypeID) []TypeID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]TypeID, len(ids))
	for i, id := range ids {
		out[i] = substitute(store, id, fresh)
	}
	return out
}
