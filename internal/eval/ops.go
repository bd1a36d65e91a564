package eval

import (
	"fmt"
	"strings"

	"neve/internal/ast"
	"neve/internal/bignum"
	"neve/internal/hir"
)

func (ev *Evaluator) evalUnary(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	v, err := ev.Eval(m, env, e.Operand)
	if err != nil {
		return Value{}, err
	}
	switch e.UnOp {
	case ast.OpNeg:
		switch v.Kind {
		case KindInt:
			return Int(v.Int.Negated()), nil
		case KindFloat:
			return Float(bignum.FloatNeg(v.Float)), nil
		}
		return Value{}, fmt.Errorf("eval: unary - on a non-numeric value")
	case ast.OpNot:
		if v.Kind != KindBool {
			return Value{}, fmt.Errorf("eval: unary ! on a non-boolean value")
		}
		return Bool(!v.Bool), nil
	}
	return Value{}, fmt.Errorf("eval: unknown unary operator")
}

func (ev *Evaluator) evalBinary(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	switch e.BinOp {
	case ast.OpAnd:
		l, err := ev.Eval(m, env, e.Left)
		if err != nil {
			return Value{}, err
		}
		if !l.Truthy() {
			return Bool(false), nil
		}
		return ev.Eval(m, env, e.Right)

	case ast.OpOr:
		l, err := ev.Eval(m, env, e.Left)
		if err != nil {
			return Value{}, err
		}
		if l.Truthy() {
			return Bool(true), nil
		}
		return ev.Eval(m, env, e.Right)

	case ast.OpCoalesce:
		l, err := ev.Eval(m, env, e.Left)
		if err != nil {
			return Value{}, err
		}
		if ev.isAbsent(l) {
			return ev.Eval(m, env, e.Right)
		}
		return l, nil
	}

	l, err := ev.Eval(m, env, e.Left)
	if err != nil {
		return Value{}, err
	}
	r, err := ev.Eval(m, env, e.Right)
	if err != nil {
		return Value{}, err
	}

	switch e.BinOp {
	case ast.OpEq:
		eq, err := valuesEqual(l, r)
		return Bool(eq), err
	case ast.OpNeq:
		eq, err := valuesEqual(l, r)
		return Bool(!eq), err
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		c, err := compareValues(l, r)
		if err != nil {
			return Value{}, err
		}
		switch e.BinOp {
		case ast.OpLt:
			return Bool(c < 0), nil
		case ast.OpLe:
			return Bool(c <= 0), nil
		case ast.OpGt:
			return Bool(c > 0), nil
		default:
			return Bool(c >= 0), nil
		}
	case ast.OpConcat:
		return concatValues(l, r)
	}

	if l.Kind == KindFloat || r.Kind == KindFloat {
		return floatBinOp(e.BinOp, l.Float, r.Float)
	}
	if l.Kind == KindInt && r.Kind == KindInt {
		return intBinOp(e.BinOp, l.Int, r.Int)
	}
	return Value{}, fmt.Errorf("eval: operator %s applied to non-numeric operands", e.BinOp)
}

func intBinOp(op ast.BinaryOp, a, b bignum.BigInt) (Value, error) {
	switch op {
	case ast.OpAdd:
		v, err := bignum.IntAdd(a, b)
		return Int(v), err
	case ast.OpSub:
		v, err := bignum.IntSub(a, b)
		return Int(v), err
	case ast.OpMul:
		v, err := bignum.IntMul(a, b)
		return Int(v), err
	case ast.OpDiv:
		q, _, err := bignum.IntDivMod(a, b)
		return Int(q), err
	case ast.OpMod:
		_, r, err := bignum.IntDivMod(a, b)
		return Int(r), err
	case ast.OpFloorDiv:
		q, r, err := bignum.IntDivMod(a, b)
		if err != nil {
			return Value{}, err
		}
		if !r.IsZero() && (r.Neg != b.Neg) {
			q, err = bignum.IntSub(q, bignum.IntFromInt64(1))
			if err != nil {
				return Value{}, err
			}
		}
		return Int(q), nil
	case ast.OpPow:
		v, err := intPow(a, b)
		return Int(v), err
	}
	return Value{}, fmt.Errorf("eval: unsupported integer operator %s", op)
}

// intPow computes a raised to the non-negative integer power b by
// repeated squaring; bignum itself has no exponentiation primitive (its
// UintPow10/UintPow5 helpers are format.go-internal, specific to decimal
// formatting), so this composes IntMul the same way format.go composes
// UintMulSmall.
func intPow(a, b bignum.BigInt) (bignum.BigInt, error) {
	if b.Neg {
		return bignum.BigInt{}, fmt.Errorf("eval: negative exponent")
	}
	exp, ok := b.Int64()
	if !ok {
		return bignum.BigInt{}, fmt.Errorf("eval: exponent too large")
	}
	result := bignum.IntFromInt64(1)
	base := a
	for exp > 0 {
		if exp&1 == 1 {
			var err error
			result, err = bignum.IntMul(result, base)
			if err != nil {
				return bignum.BigInt{}, err
			}
		}
		exp >>= 1
		if exp > 0 {
			var err error
			base, err = bignum.IntMul(base, base)
			if err != nil {
				return bignum.BigInt{}, err
			}
		}
	}
	return result, nil
}

func floatBinOp(op ast.BinaryOp, a, b bignum.BigFloat) (Value, error) {
	switch op {
	case ast.OpAdd:
		v, err := bignum.FloatAdd(a, b)
		return Float(v), err
	case ast.OpSub:
		v, err := bignum.FloatSub(a, b)
		return Float(v), err
	case ast.OpMul:
		v, err := bignum.FloatMul(a, b)
		return Float(v), err
	case ast.OpDiv:
		v, err := bignum.FloatDiv(a, b)
		return Float(v), err
	}
	return Value{}, fmt.Errorf("eval: unsupported float operator %s", op)
}

func concatValues(a, b Value) (Value, error) {
	switch {
	case a.Kind == KindString && b.Kind == KindString:
		return String(a.Str + b.Str), nil
	case a.Kind == KindList:
		return appendLists(a, b), nil
	}
	return Value{}, fmt.Errorf("eval: ++ requires two strings or two lists")
}

// appendLists lazily appends b after a: forcing the result only as far as
// the caller forces it, so `xs ++ ys` never materializes xs before the
// first element is consumed.
func appendLists(a, b Value) Value {
	if a.Kind != KindList || a.ListNil {
		return b
	}
	tail := a.ListTail
	return Cons(a.ListHead, NewThunk(func() (Value, error) {
		t, err := tail.Force()
		if err != nil {
			return Value{}, err
		}
		return appendLists(t, b), nil
	}))
}

// isAbsent reports whether v counts as "nothing there" for `??`: the
// standard library's `None`, or the unit sentinel `?.` produces when a
// safe-field-access chain comes up empty (see DESIGN.md's `?.`/Option
// simplification — neither is wrapped in a real Option value, so `??`
// recognizes them structurally instead of unwrapping a tag).
func (ev *Evaluator) isAbsent(v Value) bool {
	if v.Kind == KindUnit {
		return true
	}
	return v.Kind == KindVariant && len(v.Positional) == 0 && len(v.Named) == 0 &&
		ev.in.MustLookup(v.VariantName) == "None"
}

// ValuesEqual exposes the evaluator's own structural equality (the same
// one backing ==, !=, and pattern matching) to code outside the package,
// such as the map/set builtins comparing keys by linear scan.
func ValuesEqual(a, b Value) (bool, error) {
	return valuesEqual(a, b)
}

func valuesEqual(a, b Value) (bool, error) {
	if a.Kind != b.Kind {
		return false, nil
	}
	switch a.Kind {
	case KindUnit:
		return true, nil
	case KindBool:
		return a.Bool == b.Bool, nil
	case KindInt:
		return a.Int.Cmp(b.Int) == 0, nil
	case KindFloat:
		return a.Float.Cmp(b.Float) == 0, nil
	case KindChar:
		return a.Char == b.Char, nil
	case KindString, KindPath:
		return a.Str == b.Str, nil
	case KindTuple:
		if len(a.Tuple) != len(b.Tuple) {
			return false, nil
		}
		for i := range a.Tuple {
			av, err := a.Tuple[i].Force()
			if err != nil {
				return false, err
			}
			bv, err := b.Tuple[i].Force()
			if err != nil {
				return false, err
			}
			eq, err := valuesEqual(av, bv)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case KindRecord:
		if len(a.Fields) != len(b.Fields) {
			return false, nil
		}
		for i, f := range a.Fields {
			j, ok := fieldIndex(b, f)
			if !ok {
				return false, nil
			}
			av, err := a.Vals[i].Force()
			if err != nil {
				return false, err
			}
			bv, err := b.Vals[j].Force()
			if err != nil {
				return false, err
			}
			eq, err := valuesEqual(av, bv)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case KindVariant:
		if a.VariantName != b.VariantName {
			return false, nil
		}
		if len(a.Positional) != len(b.Positional) {
			return false, nil
		}
		for i := range a.Positional {
			av, err := a.Positional[i].Force()
			if err != nil {
				return false, err
			}
			bv, err := b.Positional[i].Force()
			if err != nil {
				return false, err
			}
			eq, err := valuesEqual(av, bv)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case KindSet:
		if len(a.SetKeys) != len(b.SetKeys) {
			return false, nil
		}
		for _, k := range a.SetKeys {
			found := false
			for _, k2 := range b.SetKeys {
				eq, err := valuesEqual(k, k2)
				if err != nil {
					return false, err
				}
				if eq {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		}
		return true, nil
	case KindMap:
		if len(a.MapKeys) != len(b.MapKeys) {
			return false, nil
		}
		for i, k := range a.MapKeys {
			j, ok := -1, false
			for idx, k2 := range b.MapKeys {
				eq, err := valuesEqual(k, k2)
				if err != nil {
					return false, err
				}
				if eq {
					j, ok = idx, true
					break
				}
			}
			if !ok {
				return false, nil
			}
			av, err := a.MapVals[i].Force()
			if err != nil {
				return false, err
			}
			bv, err := b.MapVals[j].Force()
			if err != nil {
				return false, err
			}
			eq, err := valuesEqual(av, bv)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case KindList:
		for {
			if a.ListNil != b.ListNil {
				return false, nil
			}
			if a.ListNil {
				return true, nil
			}
			av, err := a.ListHead.Force()
			if err != nil {
				return false, err
			}
			bv, err := b.ListHead.Force()
			if err != nil {
				return false, err
			}
			eq, err := valuesEqual(av, bv)
			if err != nil || !eq {
				return false, err
			}
			a, err = a.ListTail.Force()
			if err != nil {
				return false, err
			}
			b, err = b.ListTail.Force()
			if err != nil {
				return false, err
			}
		}
	}
	return false, fmt.Errorf("eval: values of this kind are not comparable for equality")
}

func compareValues(a, b Value) (int, error) {
	switch {
	case a.Kind == KindInt && b.Kind == KindInt:
		return a.Int.Cmp(b.Int), nil
	case a.Kind == KindFloat && b.Kind == KindFloat:
		return a.Float.Cmp(b.Float), nil
	case a.Kind == KindChar && b.Kind == KindChar:
		return int(a.Char) - int(b.Char), nil
	case a.Kind == KindString && b.Kind == KindString:
		return strings.Compare(a.Str, b.Str), nil
	}
	return 0, fmt.Errorf("eval: values of this kind are not ordered")
}
