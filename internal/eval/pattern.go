package eval

import (
	"neve/internal/ast"
	"neve/internal/hir"
	"neve/internal/source"
)

// subKey mirrors hir.Program's own private subKey: it derives a second
// NodeKey for a sub-position inside a node (here, one record pattern's
// i'th shorthand field) by packing the index into the upper 16 bits of
// Node. Reimplemented here rather than exported from hir, since the
// encoding is a pure function of (node, sub) with no other state —
// resolve.go's doc comment on subKey spells out the same formula.
func subKey(moduleID hir.ModuleID, node uint32, sub int) hir.NodeKey {
	return hir.NodeKey{Module: moduleID, Node: node | uint32(sub+1)<<16}
}

// Match attempts to match value against the pattern at id, extending env
// with whatever names it binds. It forces value only as far as the
// pattern's own shape requires — matching `Some(x)` forces the outer
// variant tag but leaves x itself as an unforced Thunk, and matching a
// wildcard or bare identifier forces nothing at all.
func (ev *Evaluator) Match(m *hir.Module, id ast.PatternID, value *Thunk, env *Env) (*Env, bool, error) {
	if id == ast.NoPatternID {
		return env, true, nil
	}
	pat := m.AST.Patterns.Get(id)
	key := hir.NodeKey{Module: m.ID, Node: uint32(id)}

	switch pat.Kind {
	case ast.PatWildcard:
		return env, true, nil

	case ast.PatIdent:
		if def, ok := ev.prog.TypeRefs[key]; ok {
			return ev.matchNullaryVariant(value, def, env)
		}
		local := ev.prog.PatternLocals[key]
		return env.Bind(local, value), true, nil

	case ast.PatBind:
		local := ev.prog.PatternLocals[key]
		return ev.Match(m, pat.Inner, value, env.Bind(local, value))

	case ast.PatLit:
		got, err := value.Force()
		if err != nil {
			return nil, false, err
		}
		want, err := ev.Eval(m, env, pat.LitExpr)
		if err != nil {
			return nil, false, err
		}
		eq, err := valuesEqual(got, want)
		if err != nil || !eq {
			return nil, false, err
		}
		return env, true, nil

	case ast.PatTuple:
		got, err := value.Force()
		if err != nil {
			return nil, false, err
		}
		if got.Kind != KindTuple || len(got.Tuple) != len(pat.Elems) {
			return nil, false, nil
		}
		for i, el := range pat.Elems {
			var ok bool
			env, ok, err = ev.Match(m, el, got.Tuple[i], env)
			if err != nil || !ok {
				return nil, ok, err
			}
		}
		return env, true, nil

	case ast.PatList:
		return ev.matchList(m, pat, key, value, env)

	case ast.PatRecord:
		return ev.matchRecord(m, pat, key, value, env)

	case ast.PatOr:
		for _, alt := range pat.Elems {
			newEnv, ok, err := ev.Match(m, alt, value, env)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return newEnv, true, nil
			}
		}
		return env, false, nil

	case ast.PatConstructor:
		return ev.matchConstructor(m, pat, key, value, env)
	}
	return env, false, nil
}

func (ev *Evaluator) matchNullaryVariant(value *Thunk, def hir.DefID, env *Env) (*Env, bool, error) {
	got, err := value.Force()
	if err != nil {
		return nil, false, err
	}
	if got.Kind != KindVariant {
		return nil, false, nil
	}
	wantName := ev.prog.Def(def).Name
	return env, got.VariantName == wantName, nil
}

func (ev *Evaluator) matchList(m *hir.Module, pat *ast.Pattern, key hir.NodeKey, value *Thunk, env *Env) (*Env, bool, error) {
	cur, err := value.Force()
	if err != nil {
		return nil, false, err
	}
	for _, h := range pat.Head {
		if cur.Kind != KindList || cur.ListNil {
			return nil, false, nil
		}
		var ok bool
		env, ok, err = ev.Match(m, h, cur.ListHead, env)
		if err != nil || !ok {
			return nil, ok, err
		}
		cur, err = cur.ListTail.Force()
		if err != nil {
			return nil, false, err
		}
	}
	if pat.HasRest {
		if pat.RestName != source.NoSymbol {
			local := ev.prog.PatternLocals[key]
			env = env.Bind(local, Forced(cur))
		}
		return env, true, nil
	}
	return env, cur.Kind == KindList && cur.ListNil, nil
}

func (ev *Evaluator) matchRecord(m *hir.Module, pat *ast.Pattern, key hir.NodeKey, value *Thunk, env *Env) (*Env, bool, error) {
	got, err := value.Force()
	if err != nil {
		return nil, false, err
	}
	if got.Kind != KindRecord {
		return nil, false, nil
	}
	taken := make([]bool, len(got.Fields))
	for i, f := range pat.RecordFields {
		idx, ok := fieldIndex(got, f.Name)
		if !ok {
			return nil, false, nil
		}
		taken[idx] = true
		fv := got.Vals[idx]
		if f.Pattern == ast.NoPatternID {
			// Shorthand field `{ x }`: bound under the record pattern's
			// own NodeKey combined with this field's index, matching
			// resolve.go's bindPattern for ast.PatRecord.
			local := ev.prog.PatternLocals[subKey(m.ID, key.Node, i)]
			env = env.Bind(local, fv)
			continue
		}
		var matchOK bool
		env, matchOK, err = ev.Match(m, f.Pattern, fv, env)
		if err != nil || !matchOK {
			return nil, matchOK, err
		}
	}
	if pat.HasRecordRest {
		rest := restRecord(got, taken)
		local := ev.prog.PatternLocals[key]
		env = env.Bind(local, Forced(rest))
	}
	return env, true, nil
}

func fieldIndex(v Value, name source.Symbol) (int, bool) {
	for i, f := range v.Fields {
		if f == name {
			return i, true
		}
	}
	return 0, false
}

// restRecord builds the `..rest` binding of a record pattern: every field
// of got not already named by an earlier field pattern.
func restRecord(got Value, taken []bool) Value {
	var fields []source.Symbol
	var vals []*Thunk
	for i, f := range got.Fields {
		if !taken[i] {
			fields = append(fields, f)
			vals = append(vals, got.Vals[i])
		}
	}
	return Value{Kind: KindRecord, Fields: fields, Vals: vals}
}

func (ev *Evaluator) matchConstructor(m *hir.Module, pat *ast.Pattern, key hir.NodeKey, value *Thunk, env *Env) (*Env, bool, error) {
	def, ok := ev.prog.TypeRefs[key]
	if !ok {
		return nil, false, nil
	}
	wantName := ev.prog.Def(def).Name

	got, err := value.Force()
	if err != nil {
		return nil, false, err
	}
	if got.Kind != KindVariant || got.VariantName != wantName {
		return nil, false, nil
	}
	if len(got.Positional) != len(pat.Args) {
		return nil, false, nil
	}
	for i, arg := range pat.Args {
		var matchOK bool
		env, matchOK, err = ev.Match(m, arg, got.Positional[i], env)
		if err != nil || !matchOK {
			return nil, matchOK, err
		}
	}
	return env, true, nil
}

