// Package stdlib registers Neve's standard library builtins — list,
// string, option/result, math, io, and the map/set collection module
// the original prototype's Value enum adds — into an eval.Builtins
// table. It depends on internal/eval but is never imported back by it,
// so there is no import cycle between the evaluator core and the
// builtins that extend it.
package stdlib

import (
	"neve/internal/eval"
)

// Register populates b with every builtin this package provides. Callers
// construct one *eval.Builtins per Evaluator and call Register once
// before evaluating any program.
func Register(b *eval.Builtins) {
	registerList(b)
	registerString(b)
	registerOptionResult(b)
	registerMath(b)
	registerIO(b)
	registerCollections(b)
	registerDerivation(b)
}

// forceArgs forces every argument, in order, stopping at the first
// error — used by builtins whose entire signature is eliminated
// immediately (e.g. arithmetic-shaped helpers), as opposed to builtins
// like list.map that must keep some arguments (the mapped function, or
// list elements never visited) unforced.
func forceArgs(args []*eval.Thunk) ([]eval.Value, error) {
	out := make([]eval.Value, len(args))
	for i, a := range args {
		v, err := a.Force()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
