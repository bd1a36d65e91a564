// Package eval implements Neve's evaluator: a lazy, tree-walking
// interpreter over already-resolved hir.Program/ast data, with
// trampolined tail calls (call.go) and Maranget-adjacent pattern matching
// (pattern.go, mirroring internal/sema's own non-Maranget exhaustiveness
// pass over the same ast.Pattern shapes).
package eval

import (
	"fmt"
	"strings"

	"neve/internal/bignum"
	"neve/internal/deriv"
	"neve/internal/hir"
	"neve/internal/source"
)

// Kind discriminates a runtime Value's shape.
type Kind uint8

const (
	KindUnit Kind = iota
	KindBool
	KindInt
	KindFloat
	KindChar
	KindString
	KindPath
	KindList
	KindTuple
	KindRecord
	KindVariant
	KindClosure
	KindBuiltin
	KindMap
	KindSet
	KindDerivation
)

// Value is a fully-evaluated (WHNF) runtime value. Lists are cons cells of
// thunks rather than eagerly-forced slices, so an infinite or merely
// expensive-to-fully-force list can be consumed lazily, element by element
// — the same laziness the rest of the evaluator gets from Thunk.
type Value struct {
	Kind Kind

	Bool  bool
	Int   bignum.BigInt
	Float bignum.BigFloat
	Char  rune
	Str   string // String or Path

	// List: ListNil true means the empty list (Nil); otherwise
	// ListHead/ListTail form a cons cell, with ListTail itself evaluating
	// (lazily) to another list Value.
	ListHead *Thunk
	ListTail *Thunk
	ListNil  bool

	// Tuple: lazily-held elements, same as Record/List/Variant — a tuple
	// literal is not in the elimination-sites list, so constructing one
	// forces nothing.
	Tuple []*Thunk

	// Record: parallel Fields/Vals slices (not a map) to preserve
	// declaration order for Show/printing; field lookup is by linear scan,
	// since no record literal in practice has more than a handful of
	// fields.
	Fields []source.Symbol
	Vals   []*Thunk

	// Variant: an enum constructor application, e.g. Some(x) or Point {
	// x, y }. Positional and Named are mutually exclusive, matching
	// ast.EnumVariant's own Fields-xor-Positional split.
	VariantName source.Symbol
	Positional  []*Thunk
	Named       []source.Symbol
	NamedVals   []*Thunk

	Closure *Closure
	Builtin *Builtin

	// Map/Set: a std::collections-style value, added per the prototype's
	// Value enum (see DESIGN.md). Implemented as parallel key/value slices
	// with linear-scan lookup by structural equality, the same discipline
	// Record's Fields/Vals already use — every builtin in internal/stdlib's
	// map/set module (collections.go) scans these slices rather than a
	// native Go map, since Value isn't Go-hashable (it holds *Thunk and
	// other non-comparable fields).
	MapKeys []Value
	MapVals []*Thunk
	SetKeys []Value

	// Deriv: a not-yet-built derivation, constructed by the `derivation`
	// builtin from a record of canonical fields. It stays opaque data
	// until something forces it into a string context (string
	// interpolation, a path-shaped builtin argument), at which point the
	// Evaluator's realizer builds it and substitutes an output path.
	Deriv *deriv.Derivation
}

// Derivation wraps an already-constructed derivation as a Value.
func Derivation(d *deriv.Derivation) Value {
	return Value{Kind: KindDerivation, Deriv: d}
}

// Unit is the single value of unit type.
var Unit = Value{Kind: KindUnit}

func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func Int(i bignum.BigInt) Value { return Value{Kind: KindInt, Int: i} }
func Float(f bignum.BigFloat) Value { return Value{Kind: KindFloat, Float: f} }
func Char(r rune) Value { return Value{Kind: KindChar, Char: r} }
func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Path(s string) Value { return Value{Kind: KindPath, Str: s} }
func Tuple(elems []*Thunk) Value { return Value{Kind: KindTuple, Tuple: elems} }

// Nil is the empty list.
var Nil = Value{Kind: KindList, ListNil: true}

// Cons builds a non-empty list from a head thunk and a tail thunk (itself
// forcing to another list Value).
func Cons(head, tail *Thunk) Value {
	return Value{Kind: KindList, ListHead: head, ListTail: tail}
}

// ListFromValues builds a fully-materialized list from already-evaluated
// elements, each wrapped in an already-forced Thunk — used by builtins
// that construct a list from a Go slice.
func ListFromValues(vs []Value) Value {
	out := Nil
	for i := len(vs) - 1; i >= 0; i-- {
		out = Cons(Forced(vs[i]), Forced(out))
	}
	return out
}

// ListFromThunks is ListFromValues for callers that already hold Thunks
// (e.g. a list comprehension's per-element results, each still lazy).
func ListFromThunks(ts []*Thunk) Value {
	out := Nil
	for i := len(ts) - 1; i >= 0; i-- {
		out = Cons(ts[i], Forced(out))
	}
	return out
}

// Closure is a lambda or named function value paired with the environment
// its free variables were captured from.
type Closure struct {
	Name   source.Symbol // NoSymbol for an anonymous lambda
	Module *hir.Module
	Params []ClosureParam
	Body   uint32 // ast.ExprID of the body, stored as uint32 to avoid an ast import cycle concern; see makeClosure
	Env    *Env
}

// ClosureParam names one parameter's LocalID so Apply can bind arguments
// without re-resolving names at call time. Lazy mirrors ast.Param.Lazy: a
// lazy parameter's argument thunk is bound as-is, while every other
// parameter's call site counts as an elimination site and gets forced
// by Apply before the callee's body runs.
type ClosureParam struct {
	Local hir.LocalID
	Name  source.Symbol
	Lazy  bool
}

// Builtin is a host function registered by internal/stdlib (or the
// evaluator's own small set of operators that need direct Value access,
// e.g. structural equality). Builtins receive already-thunked arguments so
// a builtin like `&&` can choose not to force its second argument.
type Builtin struct {
	Name  string
	Arity int
	Fn    func(ev *Evaluator, args []*Thunk) (Value, error)
}

func (v Value) IsUnit() bool { return v.Kind == KindUnit }

// Truthy reports v's boolean value; callers (If, &&, ||, match guards) only
// ever call this on a Value already known (by the type checker) to be
// Bool.
func (v Value) Truthy() bool { return v.Kind == KindBool && v.Bool }

// Render prints v for REPL/`print` output, resolving symbol names through
// in. It forces list elements and tails, tuple elements, record fields and
// variant arguments as it prints them; a list or tuple element whose
// forcing fails prints as "<error>".
func (v Value) Render(in *source.Interner) string {
	var b strings.Builder
	v.render(in, &b)
	return b.String()
}

func (v Value) render(in *source.Interner, b *strings.Builder) {
	switch v.Kind {
	case KindUnit:
		b.WriteString("()")
	case KindBool:
		fmt.Fprintf(b, "%v", v.Bool)
	case KindInt:
		b.WriteString(bignum.FormatInt(v.Int))
	case KindFloat:
		s, err := bignum.FormatFloat(v.Float)
		if err != nil {
			b.WriteString("<float error>")
			return
		}
		b.WriteString(s)
	case KindChar:
		fmt.Fprintf(b, "%q", v.Char)
	case KindString:
		fmt.Fprintf(b, "%q", v.Str)
	case KindPath:
		b.WriteString(v.Str)
	case KindDerivation:
		fmt.Fprintf(b, "<derivation %s>", v.Deriv.Name)
	case KindList:
		b.WriteByte('[')
		first := true
		cur := v
		for cur.Kind == KindList && !cur.ListNil {
			if !first {
				b.WriteString(", ")
			}
			first = false
			head, err := cur.ListHead.Force()
			if err != nil {
				b.WriteString("<error>")
				break
			}
			head.render(in, b)
			tail, err := cur.ListTail.Force()
			if err != nil {
				b.WriteString(", <error>")
				break
			}
			cur = tail
		}
		b.WriteByte(']')
	case KindTuple:
		b.WriteByte('(')
		for i, t := range v.Tuple {
			if i > 0 {
				b.WriteString(", ")
			}
			tv, err := t.Force()
			if err == nil {
				tv.render(in, b)
			} else {
				b.WriteString("<error>")
			}
		}
		b.WriteByte(')')
	case KindRecord:
		b.WriteString("#{")
		for i, f := range v.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(in.MustLookup(f))
			b.WriteString(": ")
			fv, err := v.Vals[i].Force()
			if err == nil {
				fv.render(in, b)
			}
		}
		b.WriteString("}")
	case KindVariant:
		b.WriteString(in.MustLookup(v.VariantName))
		if len(v.Positional) > 0 {
			b.WriteByte('(')
			for i, t := range v.Positional {
				if i > 0 {
					b.WriteString(", ")
				}
				fv, err := t.Force()
				if err == nil {
					fv.render(in, b)
				}
			}
			b.WriteByte(')')
		} else if len(v.Named) > 0 {
			b.WriteString(" { ")
			for i, name := range v.Named {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(in.MustLookup(name))
				b.WriteString(": ")
				fv, err := v.NamedVals[i].Force()
				if err == nil {
					fv.render(in, b)
				}
			}
			b.WriteString(" }")
		}
	case KindClosure:
		b.WriteString("<function>")
	case KindBuiltin:
		fmt.Fprintf(b, "<builtin %s>", v.Builtin.Name)
	case KindMap:
		b.WriteString("map{")
		for i, k := range v.MapKeys {
			if i > 0 {
				b.WriteString(", ")
			}
			k.render(in, b)
			b.WriteString(": ")
			fv, err := v.MapVals[i].Force()
			if err == nil {
				fv.render(in, b)
			}
		}
		b.WriteString("}")
	case KindSet:
		b.WriteString("set{")
		for i, k := range v.SetKeys {
			if i > 0 {
				b.WriteString(", ")
			}
			k.render(in, b)
		}
		b.WriteString("}")
	}
}
