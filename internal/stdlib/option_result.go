package stdlib

import (
	"fmt"

	"neve/internal/eval"
)

// registerOptionResult wires map, flat_map, with_default, map_err over
// the Option (Some/None) and Result (Ok/Err) variants that a program's
// own enum declarations define and this evaluator's `?.`/`??` already
// recognize structurally (see internal/eval's isAbsent). Each builtin
// here dispatches on the variant's interned name rather than a fixed
// type tag, so it works the same whether the caller's program declared
// its own Option-shaped enum or uses the one the prelude provides.
func registerOptionResult(b *eval.Builtins) {
	b.Register("option.map", 2, builtinOptionMap)
	b.Register("option.flat_map", 2, builtinOptionFlatMap)
	b.Register("option.with_default", 2, builtinWithDefault)
	b.Register("result.map", 2, builtinResultMap)
	b.Register("result.flat_map", 2, builtinOptionFlatMap)
	b.Register("result.with_default", 2, builtinWithDefault)
	b.Register("result.map_err", 2, builtinMapErr)
}

func variantTag(ev *eval.Evaluator, v eval.Value) (string, error) {
	if v.Kind != eval.KindVariant {
		return "", fmt.Errorf("stdlib: expected an Option or Result value")
	}
	return ev.Interner().MustLookup(v.VariantName), nil
}

func someVariant(ev *eval.Evaluator, inner *eval.Thunk) eval.Value {
	return eval.Value{
		Kind:        eval.KindVariant,
		VariantName: ev.Interner().Intern("Some"),
		Positional:  []*eval.Thunk{inner},
	}
}

func noneVariant(ev *eval.Evaluator) eval.Value {
	return eval.Value{Kind: eval.KindVariant, VariantName: ev.Interner().Intern("None")}
}

func okVariant(ev *eval.Evaluator, inner *eval.Thunk) eval.Value {
	return eval.Value{
		Kind:        eval.KindVariant,
		VariantName: ev.Interner().Intern("Ok"),
		Positional:  []*eval.Thunk{inner},
	}
}

func errVariant(ev *eval.Evaluator, inner *eval.Thunk) eval.Value {
	return eval.Value{
		Kind:        eval.KindVariant,
		VariantName: ev.Interner().Intern("Err"),
		Positional:  []*eval.Thunk{inner},
	}
}

// builtinOptionMap applies fn to Some's payload, leaving None (or Err)
// untouched. Shared by option.map and, by symmetry, result.map below
// since both are "map over the success case" — but result.map needs to
// preserve the Err payload rather than the tag alone, so it has its own
// implementation.
func builtinOptionMap(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	fn, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	v, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	tag, err := variantTag(ev, v)
	if err != nil {
		return eval.Value{}, err
	}
	switch tag {
	case "Some":
		payload := v.Positional[0]
		return someVariant(ev, eval.NewThunk(func() (eval.Value, error) {
			return ev.Apply(fn, []*eval.Thunk{payload})
		})), nil
	case "None":
		return v, nil
	}
	return eval.Value{}, fmt.Errorf("stdlib: option.map expects a Some or None value")
}

func builtinResultMap(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	fn, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	v, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	tag, err := variantTag(ev, v)
	if err != nil {
		return eval.Value{}, err
	}
	switch tag {
	case "Ok":
		payload := v.Positional[0]
		return okVariant(ev, eval.NewThunk(func() (eval.Value, error) {
			return ev.Apply(fn, []*eval.Thunk{payload})
		})), nil
	case "Err":
		return v, nil
	}
	return eval.Value{}, fmt.Errorf("stdlib: result.map expects an Ok or Err value")
}

// builtinOptionFlatMap backs both option.flat_map and result.flat_map:
// fn itself returns a new Option/Result, so this does not re-wrap the
// way map does.
func builtinOptionFlatMap(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	fn, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	v, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	tag, err := variantTag(ev, v)
	if err != nil {
		return eval.Value{}, err
	}
	switch tag {
	case "Some", "Ok":
		return ev.Apply(fn, []*eval.Thunk{v.Positional[0]})
	case "None", "Err":
		return v, nil
	}
	return eval.Value{}, fmt.Errorf("stdlib: flat_map expects an Option or Result value")
}

// builtinWithDefault unwraps Some/Ok or falls back to a caller-supplied
// default for None/Err. Shared across option.with_default and
// result.with_default since the shape is identical once the tag is
// known.
func builtinWithDefault(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	v, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	tag, err := variantTag(ev, v)
	if err != nil {
		return eval.Value{}, err
	}
	switch tag {
	case "Some", "Ok":
		return v.Positional[0].Force()
	case "None", "Err":
		return args[1].Force()
	}
	return eval.Value{}, fmt.Errorf("stdlib: with_default expects an Option or Result value")
}

func builtinMapErr(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	fn, err := args[0].Force()
	if err != nil {
		return eval.Value{}, err
	}
	v, err := args[1].Force()
	if err != nil {
		return eval.Value{}, err
	}
	tag, err := variantTag(ev, v)
	if err != nil {
		return eval.Value{}, err
	}
	switch tag {
	case "Err":
		payload := v.Positional[0]
		return errVariant(ev, eval.NewThunk(func() (eval.Value, error) {
			return ev.Apply(fn, []*eval.Thunk{payload})
		})), nil
	case "Ok":
		return v, nil
	}
	return eval.Value{}, fmt.Errorf("stdlib: result.map_err expects an Ok or Err value")
}
