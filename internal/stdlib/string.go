package stdlib

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"neve/internal/bignum"
	"neve/internal/eval"
)

// registerString wires the string module: length, concat, split, trim,
// to_upper, to_lower. to_upper/to_lower go through golang.org/x/text/cases
// rather than strings.ToUpper/ToLower — plain ASCII case folding mishandles
// scripts with context-sensitive casing (Turkish dotless i, German ß), and
// cases.Caser is what the rest of the ecosystem reaches for to get that
// right.
func registerString(b *eval.Builtins) {
	b.Register("string.length", 1, builtinStringLength)
	b.Register("string.concat", 1, builtinStringConcat)
	b.Register("string.split", 2, builtinStringSplit)
	b.Register("string.trim", 1, builtinStringTrim)
	b.Register("string.to_upper", 1, builtinStringToUpper)
	b.Register("string.to_lower", 1, builtinStringToLower)
}

func wantString(v eval.Value) (string, error) {
	if v.Kind != eval.KindString {
		return "", fmt.Errorf("stdlib: expected a string value")
	}
	return v.Str, nil
}

func builtinStringLength(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	vs, err := forceArgs(args)
	if err != nil {
		return eval.Value{}, err
	}
	s, err := wantString(vs[0])
	if err != nil {
		return eval.Value{}, err
	}
	return eval.Int(bignum.IntFromInt64(int64(len([]rune(s))))), nil
}

// builtinStringConcat takes a list of strings (mirroring list.concat's
// shape, not the binary `++` operator) and joins them.
func builtinStringConcat(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	cur, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	if err := wantList(cur); err != nil {
		return eval.Value{}, err
	}
	var b strings.Builder
	for !cur.ListNil {
		hv, err := cur.ListHead.Force()
		if err != nil {
			return eval.Value{}, err
		}
		s, err := wantString(hv)
		if err != nil {
			return eval.Value{}, err
		}
		b.WriteString(s)
		cur, err = cur.ListTail.Force()
		if err != nil {
			return eval.Value{}, err
		}
	}
	return eval.String(b.String()), nil
}

func builtinStringSplit(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	vs, err := forceArgs(args)
	if err != nil {
		return eval.Value{}, err
	}
	s, err := wantString(vs[0])
	if err != nil {
		return eval.Value{}, err
	}
	sep, err := wantString(vs[1])
	if err != nil {
		return eval.Value{}, err
	}
	parts := strings.Split(s, sep)
	out := make([]eval.Value, len(parts))
	for i, p := range parts {
		out[i] = eval.String(p)
	}
	return eval.ListFromValues(out), nil
}

func builtinStringTrim(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	vs, err := forceArgs(args)
	if err != nil {
		return eval.Value{}, err
	}
	s, err := wantString(vs[0])
	if err != nil {
		return eval.Value{}, err
	}
	return eval.String(strings.TrimSpace(s)), nil
}

var upperCaser = cases.Upper(language.Und)
var lowerCaser = cases.Lower(language.Und)

func builtinStringToUpper(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	vs, err := forceArgs(args)
	if err != nil {
		return eval.Value{}, err
	}
	s, err := wantString(vs[0])
	if err != nil {
		return eval.Value{}, err
	}
	return eval.String(upperCaser.String(s)), nil
}

func builtinStringToLower(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	vs, err := forceArgs(args)
	if err != nil {
		return eval.Value{}, err
	}
	s, err := wantString(vs[0])
	if err != nil {
		return eval.Value{}, err
	}
	return eval.String(lowerCaser.String(s)), nil
}
