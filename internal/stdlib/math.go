package stdlib

import (
	"fmt"
	gomath "math"
	"strconv"

	"neve/internal/bignum"
	"neve/internal/eval"
)

// registerMath wires abs, min, max, pow, sqrt. Every one works over both
// Int and Float, matching +/-/*// 's own dispatch-by-Kind in
// internal/eval/ops.go rather than splitting into separate int_abs/
// float_abs builtins.
func registerMath(b *eval.Builtins) {
	b.Register("math.abs", 1, builtinMathAbs)
	b.Register("math.min", 2, builtinMathMin)
	b.Register("math.max", 2, builtinMathMax)
	b.Register("math.pow", 2, builtinMathPow)
	b.Register("math.sqrt", 1, builtinMathSqrt)
}

func builtinMathAbs(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	v, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	switch v.Kind {
	case eval.KindInt:
		return eval.Int(bignum.BigInt{Limbs: v.Int.Abs().Limbs}), nil
	case eval.KindFloat:
		f := v.Float
		f.Neg = false
		return eval.Float(f), nil
	}
	return eval.Value{}, fmt.Errorf("stdlib: math.abs expects a number")
}

func numCmp(a, b eval.Value) (int, error) {
	switch {
	case a.Kind == eval.KindInt && b.Kind == eval.KindInt:
		return a.Int.Cmp(b.Int), nil
	case a.Kind == eval.KindFloat && b.Kind == eval.KindFloat:
		return a.Float.Cmp(b.Float), nil
	}
	return 0, fmt.Errorf("stdlib: expected two numbers of the same kind")
}

func builtinMathMin(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	vs, err := forceArgs(args)
	if err != nil {
		return eval.Value{}, err
	}
	c, err := numCmp(vs[0], vs[1])
	if err != nil {
		return eval.Value{}, err
	}
	if c <= 0 {
		return vs[0], nil
	}
	return vs[1], nil
}

func builtinMathMax(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	vs, err := forceArgs(args)
	if err != nil {
		return eval.Value{}, err
	}
	c, err := numCmp(vs[0], vs[1])
	if err != nil {
		return eval.Value{}, err
	}
	if c >= 0 {
		return vs[0], nil
	}
	return vs[1], nil
}

func builtinMathPow(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	vs, err := forceArgs(args)
	if err != nil {
		return eval.Value{}, err
	}
	a, b := vs[0], vs[1]
	if a.Kind == eval.KindInt && b.Kind == eval.KindInt && !b.Int.Neg {
		r, err := intPowStdlib(a.Int, b.Int)
		if err != nil {
			return eval.Value{}, err
		}
		return eval.Int(r), nil
	}
	af, err := asFloat(a)
	if err != nil {
		return eval.Value{}, err
	}
	bf, err := asFloat(b)
	if err != nil {
		return eval.Value{}, err
	}
	exp, ok := wrappedFloat(bf).toGoFloat()
	if !ok {
		return eval.Value{}, fmt.Errorf("stdlib: math.pow exponent is out of range")
	}
	// Integral-exponent fast path via repeated squaring in BigFloat
	// arithmetic; fractional exponents are out of scope (no log/exp
	// primitive in internal/bignum to compose for a general power).
	if exp != float64(int64(exp)) {
		return eval.Value{}, fmt.Errorf("stdlib: math.pow only supports integer exponents")
	}
	n := int64(exp)
	neg := n < 0
	if neg {
		n = -n
	}
	result, err := floatPow(af, n)
	if err != nil {
		return eval.Value{}, err
	}
	if neg {
		one, _ := bignum.FloatFromInt(bignum.IntFromInt64(1))
		result, err = bignum.FloatDiv(one, result)
		if err != nil {
			return eval.Value{}, err
		}
	}
	return eval.Float(result), nil
}

func intPowStdlib(a, b bignum.BigInt) (bignum.BigInt, error) {
	exp, ok := b.Int64()
	if !ok || exp < 0 {
		return bignum.BigInt{}, fmt.Errorf("stdlib: math.pow exponent out of range")
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

func floatPow(base bignum.BigFloat, exp int64) (bignum.BigFloat, error) {
	result, err := bignum.FloatFromInt(bignum.IntFromInt64(1))
	if err != nil {
		return bignum.BigFloat{}, err
	}
	for exp > 0 {
		if exp&1 == 1 {
			result, err = bignum.FloatMul(result, base)
			if err != nil {
				return bignum.BigFloat{}, err
			}
		}
		exp >>= 1
		if exp > 0 {
			base, err = bignum.FloatMul(base, base)
			if err != nil {
				return bignum.BigFloat{}, err
			}
		}
	}
	return result, nil
}

func asFloat(v eval.Value) (bignum.BigFloat, error) {
	switch v.Kind {
	case eval.KindFloat:
		return v.Float, nil
	case eval.KindInt:
		return bignum.FloatFromInt(v.Int)
	}
	return bignum.BigFloat{}, fmt.Errorf("stdlib: expected a number")
}

// toGoFloat round-trips through FormatFloat/strconv since internal/bignum
// exposes no direct BigFloat->float64 accessor; used only to recover a
// small integer exponent for math.pow, never for a result value.
func (f wrappedFloat) toGoFloat() (float64, bool) {
	s, err := bignum.FormatFloat(bignum.BigFloat(f))
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type wrappedFloat bignum.BigFloat

func builtinMathSqrt(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	v, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	f, err := asFloat(v)
	if err != nil {
		return eval.Value{}, err
	}
	if f.Neg && !f.IsZero() {
		return eval.Value{}, fmt.Errorf("stdlib: math.sqrt of a negative number")
	}
	if f.IsZero() {
		return eval.Float(bignum.FloatZero()), nil
	}
	result, err := sqrtNewton(f)
	if err != nil {
		return eval.Value{}, err
	}
	return eval.Float(result), nil
}

// sqrtNewton refines an initial float64-precision guess (recovered via
// FormatFloat/strconv, since bignum has no native sqrt) with a fixed
// number of Newton-Raphson iterations in full BigFloat precision:
// x_{n+1} = (x_n + f/x_n) / 2.
func sqrtNewton(f bignum.BigFloat) (bignum.BigFloat, error) {
	seed, ok := wrappedFloat(f).toGoFloat()
	if !ok || seed <= 0 {
		seed = 1
	}
	guessStr := strconv.FormatFloat(gomath.Sqrt(seed), 'g', -1, 64)
	x, err := bignum.ParseFloat(guessStr)
	if err != nil {
		return bignum.BigFloat{}, err
	}
	two, err := bignum.FloatFromInt(bignum.IntFromInt64(2))
	if err != nil {
		return bignum.BigFloat{}, err
	}
	for i := 0; i < 40; i++ {
		quot, err := bignum.FloatDiv(f, x)
		if err != nil {
			return bignum.BigFloat{}, err
		}
		sum, err := bignum.FloatAdd(x, quot)
		if err != nil {
			return bignum.BigFloat{}, err
		}
		x, err = bignum.FloatDiv(sum, two)
		if err != nil {
			return bignum.BigFloat{}, err
		}
	}
	return x, nil
}
