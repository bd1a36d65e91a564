package eval

import (
	"fmt"

	"neve/internal/ast"
	"neve/internal/hir"
)

// tailCall is what evalTail returns instead of a Value when the
// expression it evaluated was itself a call in tail position: Apply's own
// loop continues with this call rather than recursing, so a self- or
// mutually-tail-recursive Neve function runs in constant Go stack space.
type tailCall struct {
	fn   Value
	args []*Thunk
}

func (ev *Evaluator) evalCallTop(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	fn, err := ev.Eval(m, env, e.Callee)
	if err != nil {
		return Value{}, err
	}
	args := make([]*Thunk, len(e.Elems))
	for i, a := range e.Elems {
		args[i] = ev.EvalThunk(m, env, a)
	}
	return ev.Apply(fn, args)
}

// Apply calls fn with args, trampolining through any tail call the body
// produces instead of growing the Go call stack for each one.
func (ev *Evaluator) Apply(fn Value, args []*Thunk) (Value, error) {
	for {
		switch fn.Kind {
		case KindBuiltin:
			if fn.Builtin.Arity >= 0 && len(args) != fn.Builtin.Arity {
				return Value{}, fmt.Errorf("eval: %s expects %d argument(s), got %d", fn.Builtin.Name, fn.Builtin.Arity, len(args))
			}
			return fn.Builtin.Fn(ev, args)

		case KindClosure:
			cl := fn.Closure
			if len(args) != len(cl.Params) {
				return Value{}, fmt.Errorf("eval: function expects %d argument(s), got %d", len(cl.Params), len(args))
			}
			callEnv := cl.Env
			for i, p := range cl.Params {
				arg := args[i]
				if !p.Lazy {
					// Strict argument: the call is the elimination site,
					// so force it now rather than leaving it for whatever
					// the body happens to do with it. Force memoizes, so
					// this costs nothing extra if the body forces it too.
					if _, err := arg.Force(); err != nil {
						return Value{}, err
					}
				}
				callEnv = callEnv.Bind(p.Local, arg)
			}
			v, next, err := ev.evalTail(cl.Module, callEnv, ast.ExprID(cl.Body))
			if err != nil {
				return Value{}, err
			}
			if next == nil {
				return v, nil
			}
			fn, args = next.fn, next.args
			continue

		default:
			return Value{}, fmt.Errorf("eval: cannot call a non-function value")
		}
	}
}

// evalTail evaluates id in tail position: a Call at the very end of a
// function body (directly, or through Block/If/Match's own tail
// positions) is reported back as a pending tailCall instead of being
// applied here, so Apply's trampoline can run it without adding a stack
// frame.
func (ev *Evaluator) evalTail(m *hir.Module, env *Env, id ast.ExprID) (Value, *tailCall, error) {
	if id == ast.NoExprID {
		return Unit, nil, nil
	}
	e := m.AST.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprCall:
		fn, err := ev.Eval(m, env, e.Callee)
		if err != nil {
			return Value{}, nil, err
		}
		args := make([]*Thunk, len(e.Elems))
		for i, a := range e.Elems {
			args[i] = ev.EvalThunk(m, env, a)
		}
		return Value{}, &tailCall{fn: fn, args: args}, nil

	case ast.ExprIf:
		cond, err := ev.Eval(m, env, e.Cond)
		if err != nil {
			return Value{}, nil, err
		}
		if cond.Truthy() {
			return ev.evalTail(m, env, e.Then)
		}
		return ev.evalTail(m, env, e.Else)

	case ast.ExprBlock:
		for _, b := range e.Bindings {
			t := ev.EvalThunk(m, env, b.Value)
			var ok bool
			var err error
			env, ok, err = ev.Match(m, b.Pattern, t, env)
			if err != nil {
				return Value{}, nil, err
			}
			if !ok {
				return Value{}, nil, fmt.Errorf("eval: let binding pattern did not match its value")
			}
		}
		return ev.evalTail(m, env, e.Result)

	case ast.ExprMatch:
		scrutinee := ev.EvalThunk(m, env, e.Scrutinee)
		for _, arm := range e.Arms {
			armEnv, ok, err := ev.Match(m, arm.Pattern, scrutinee, env)
			if err != nil {
				return Value{}, nil, err
			}
			if !ok {
				continue
			}
			if arm.Guard != ast.NoExprID {
				g, err := ev.Eval(m, armEnv, arm.Guard)
				if err != nil {
					return Value{}, nil, err
				}
				if !g.Truthy() {
					continue
				}
			}
			return ev.evalTail(m, armEnv, arm.Body)
		}
		return Value{}, nil, fmt.Errorf("eval: no match arm matched (exhaustiveness should have prevented this)")

	default:
		v, err := ev.Eval(m, env, id)
		return v, nil, err
	}
}

func (ev *Evaluator) evalListComp(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	var out []*Thunk
	var rec func(genIdx int, env *Env) error
	rec = func(genIdx int, env *Env) error {
		if genIdx == len(e.Generators) {
			for _, g := range e.Guards {
				gv, err := ev.Eval(m, env, g)
				if err != nil {
					return err
				}
				if !gv.Truthy() {
					return nil
				}
			}
			out = append(out, ev.EvalThunk(m, env, e.Body))
			return nil
		}
		gen := e.Generators[genIdx]
		cur, err := ev.Eval(m, env, gen.Source)
		if err != nil {
			return err
		}
		for cur.Kind == KindList && !cur.ListNil {
			innerEnv, ok, err := ev.Match(m, gen.Pattern, cur.ListHead, env)
			if err != nil {
				return err
			}
			if ok {
				if err := rec(genIdx+1, innerEnv); err != nil {
					return err
				}
			}
			cur, err = cur.ListTail.Force()
			if err != nil {
				return err
			}
		}
		return nil
	}
	if err := rec(0, env); err != nil {
		return Value{}, err
	}
	return ListFromThunks(out), nil
}
