package eval

import (
	"fmt"

	"neve/internal/ast"
	"neve/internal/bignum"
	"neve/internal/deriv"
	"neve/internal/hir"
	"neve/internal/source"
)

// Realizer builds a derivation into a set of named output paths. It is
// implemented by internal/builder; the evaluator only knows the interface,
// so internal/eval never imports internal/builder and there is no cycle
// back through internal/stdlib -> internal/eval.
type Realizer interface {
	Realize(d *deriv.Derivation) (outputs map[string]string, err error)
}

// Evaluator holds everything a single evaluation session needs: the
// resolved program (for ExprRefs/PatternLocals/TypeRefs/Def lookups), the
// string interner (for rendering and for building record/variant field
// names back into Symbols), the registered builtin table, and one memoized
// thunk per top-level definition — a module's `let`/`fn` bindings are
// computed at most once per Evaluator, same as any other let binding.
type Evaluator struct {
	prog     *hir.Program
	in       *source.Interner
	builtins *Builtins
	globals  map[hir.DefID]*Thunk
	realizer Realizer
}

func NewEvaluator(prog *hir.Program, in *source.Interner, builtins *Builtins) *Evaluator {
	return &Evaluator{prog: prog, in: in, builtins: builtins, globals: make(map[hir.DefID]*Thunk)}
}

// SetRealizer wires a builder into the evaluator so that forcing a
// derivation into a string or path context can actually produce one.
// Commands that never build anything (eval, check, fmt) leave this nil;
// forcing a derivation there fails with a clear error instead of a panic.
func (ev *Evaluator) SetRealizer(r Realizer) {
	ev.realizer = r
}

// RealizeToString forces v into the string a derivation would lower to: a
// plain string/path passes through unchanged, and a derivation is built
// (via the registered Realizer) and replaced by the path of its "out"
// output, falling back to whichever single output it declared.
func (ev *Evaluator) RealizeToString(v Value) (string, error) {
	if v.Kind == KindString || v.Kind == KindPath {
		return v.Str, nil
	}
	if v.Kind != KindDerivation {
		return v.Render(ev.in), nil
	}
	if ev.realizer == nil {
		return "", fmt.Errorf("cannot realize derivation %q: no builder configured for this command", v.Deriv.Name)
	}
	outputs, err := ev.realizer.Realize(v.Deriv)
	if err != nil {
		return "", fmt.Errorf("building %q: %w", v.Deriv.Name, err)
	}
	if p, ok := outputs["out"]; ok {
		return p, nil
	}
	for _, name := range v.Deriv.OutputNames {
		if p, ok := outputs[name]; ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("derivation %q produced no usable output", v.Deriv.Name)
}

// Interner exposes the symbol table backing this evaluator's module so
// that code outside the package (the builtins registered onto
// ev.builtins) can intern or look up the names of variants they
// construct or inspect, such as Option's Some/None.
func (ev *Evaluator) Interner() *source.Interner {
	return ev.in
}

// Global returns the memoized thunk for a top-level definition, creating
// it (but not forcing it) on first reference.
func (ev *Evaluator) Global(def hir.DefID) *Thunk {
	if t, ok := ev.globals[def]; ok {
		return t
	}
	t := NewThunk(func() (Value, error) { return ev.evalDef(def) })
	ev.globals[def] = t
	return t
}

func (ev *Evaluator) evalDef(def hir.DefID) (Value, error) {
	d := ev.prog.Def(def)
	m := ev.prog.Module(d.Module)
	switch d.Kind {
	case hir.DefLet:
		item := m.AST.Items.Get(d.Item)
		return ev.Eval(m, nil, item.Value)
	case hir.DefFn:
		item := m.AST.Items.Get(d.Item)
		return ev.makeClosure(m, d.Name, item.Params, uint32(d.Item), true, item.Body, nil), nil
	case hir.DefEnumVariant:
		return ev.makeVariantConstructor(m, d), nil
	default:
		return Value{}, fmt.Errorf("eval: %s cannot be evaluated as a value", d.Kind)
	}
}

// makeClosure builds a Closure value for either a top-level fn (fromItem
// true, node is the defining ast.ItemID) or a lambda (fromItem false, node
// is the lambda's own ast.ExprID), recovering each parameter's LocalID
// from FnParamLocals/LambdaParamLocals the same way hir recorded them.
func (ev *Evaluator) makeClosure(m *hir.Module, name source.Symbol, params []ast.Param, node uint32, fromItem bool, body ast.ExprID, env *Env) Value {
	table := ev.prog.LambdaParamLocals
	if fromItem {
		table = ev.prog.FnParamLocals
	}
	cparams := make([]ClosureParam, len(params))
	for i, p := range params {
		local := table[subKey(m.ID, node, i)]
		cparams[i] = ClosureParam{Local: local, Name: p.Name, Lazy: p.Lazy}
	}
	return Value{Kind: KindClosure, Closure: &Closure{
		Name: name, Module: m, Params: cparams, Body: uint32(body), Env: env,
	}}
}

// makeVariantConstructor returns a Builtin that, applied to the variant's
// declared arity, builds a KindVariant Value — so `Some(1)` evaluates by
// looking up `Some` as an ordinary callable, the same path any other
// function call takes.
func (ev *Evaluator) makeVariantConstructor(m *hir.Module, d *hir.Def) Value {
	enumDef := ev.prog.Def(d.Parent)
	enumItem := m.AST.Items.Get(enumDef.Item)
	var variant *ast.EnumVariant
	for i := range enumItem.Variants {
		if enumItem.Variants[i].Name == d.Name {
			variant = &enumItem.Variants[i]
			break
		}
	}
	if variant == nil || (len(variant.Fields) == 0 && len(variant.Positional) == 0) {
		return Value{Kind: KindVariant, VariantName: d.Name}
	}
	fieldNames := make([]source.Symbol, len(variant.Fields))
	for i, f := range variant.Fields {
		fieldNames[i] = f.Name
	}
	arity := len(variant.Positional)
	if len(fieldNames) > 0 {
		arity = len(fieldNames)
	}
	name := d.Name
	return Value{Kind: KindBuiltin, Builtin: &Builtin{
		Name:  ev.in.MustLookup(name),
		Arity: arity,
		Fn: func(ev *Evaluator, args []*Thunk) (Value, error) {
			if len(fieldNames) > 0 {
				return Value{Kind: KindVariant, VariantName: name, Named: fieldNames, NamedVals: args}, nil
			}
			return Value{Kind: KindVariant, VariantName: name, Positional: args}, nil
		},
	}}
}

// EvalThunk defers evaluation of id until forced — used for let bindings,
// call arguments, and list elements, everywhere the language's call-by-need
// semantics require not evaluating something that might never be used.
func (ev *Evaluator) EvalThunk(m *hir.Module, env *Env, id ast.ExprID) *Thunk {
	return NewThunk(func() (Value, error) { return ev.Eval(m, env, id) })
}

// Eval evaluates id to WHNF, recursing strictly into whatever subexpression
// positions need a concrete Value to proceed (conditions, scrutinees,
// operator operands) and deferring everything else through EvalThunk.
func (ev *Evaluator) Eval(m *hir.Module, env *Env, id ast.ExprID) (Value, error) {
	if id == ast.NoExprID {
		return Unit, nil
	}
	e := m.AST.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprIdent:
		return ev.evalIdent(m, env, id)

	case ast.ExprIntLit:
		u, err := bignum.ParseIntLiteral(ev.in.MustLookup(e.Text))
		if err != nil {
			return Value{}, fmt.Errorf("eval: malformed integer literal: %w", err)
		}
		// ParseIntLiteral only ever yields a magnitude (see
		// internal/bignum's own ParseIntLiteral/ParseInt split); ExprUnary's
		// OpNeg negates it at evaluation time like any other operator.
		return Int(bignum.BigInt{Limbs: u.Limbs}), nil

	case ast.ExprFloatLit:
		f, err := bignum.ParseFloat(ev.in.MustLookup(e.Text))
		if err != nil {
			return Value{}, fmt.Errorf("eval: malformed float literal: %w", err)
		}
		return Float(f), nil

	case ast.ExprBoolLit:
		return Bool(e.BoolVal), nil

	case ast.ExprCharLit:
		return Char(e.CharVal), nil

	case ast.ExprStringLit, ast.ExprMultilineStr:
		return String(ev.in.MustLookup(e.Text)), nil

	case ast.ExprPathLit:
		return Path(ev.in.MustLookup(e.Text)), nil

	case ast.ExprInterpString:
		return ev.evalInterpString(m, env, e)

	case ast.ExprList:
		ts := make([]*Thunk, len(e.Elems))
		for i, el := range e.Elems {
			ts[i] = ev.EvalThunk(m, env, el)
		}
		return ListFromThunks(ts), nil

	case ast.ExprListComp:
		return ev.evalListComp(m, env, e)

	case ast.ExprTuple:
		ts := make([]*Thunk, len(e.Elems))
		for i, el := range e.Elems {
			ts[i] = ev.EvalThunk(m, env, el)
		}
		return Tuple(ts), nil

	case ast.ExprRecord:
		return ev.evalRecord(m, env, e)

	case ast.ExprLambda:
		return ev.makeClosure(m, source.NoSymbol, e.Params, uint32(id), false, e.Body, env), nil

	case ast.ExprCall:
		return ev.evalCallTop(m, env, e)

	case ast.ExprField:
		return ev.evalField(m, env, e, false)
	case ast.ExprSafeField:
		return ev.evalField(m, env, e, true)

	case ast.ExprIndex:
		return ev.evalIndex(m, env, e)

	case ast.ExprMatch:
		return ev.evalMatch(m, env, e)

	case ast.ExprIf:
		return ev.evalIf(m, env, e)

	case ast.ExprBlock:
		return ev.evalBlock(m, env, e)

	case ast.ExprBinary:
		return ev.evalBinary(m, env, e)

	case ast.ExprUnary:
		return ev.evalUnary(m, env, e)

	case ast.ExprPipe:
		return ev.evalPipe(m, env, e)

	case ast.ExprTry:
		return ev.evalTry(m, env, e)

	case ast.ExprRange:
		return ev.evalRange(m, env, e)

	case ast.ExprErroneous:
		return Value{}, fmt.Errorf("eval: cannot evaluate a syntactically invalid expression")
	}
	return Value{}, fmt.Errorf("eval: unhandled expression kind %s", e.Kind)
}

func (ev *Evaluator) evalIdent(m *hir.Module, env *Env, id ast.ExprID) (Value, error) {
	key := hir.NodeKey{Module: m.ID, Node: uint32(id)}
	ref, ok := ev.prog.ExprRefs[key]
	if !ok {
		return Value{}, fmt.Errorf("eval: unresolved identifier")
	}
	switch ref.Kind {
	case hir.RefLocal:
		t, ok := env.Lookup(ref.Local)
		if !ok {
			return Value{}, fmt.Errorf("eval: local binding not found in environment")
		}
		return t.Force()
	case hir.RefDef:
		def := ev.prog.Def(ref.Def)
		if def.Kind == hir.DefFn {
			m2 := ev.prog.Module(def.Module)
			item := m2.AST.Items.Get(def.Item)
			return ev.makeClosure(m2, def.Name, item.Params, uint32(def.Item), true, item.Body, nil), nil
		}
		if def.Kind == hir.DefPrelude {
			name := ev.in.MustLookup(def.Name)
			if bi, ok := ev.builtins.Lookup(name); ok {
				return Value{Kind: KindBuiltin, Builtin: bi}, nil
			}
			return ev.preludeNamespace(name), nil
		}
		return ev.Global(ref.Def).Force()
	}
	return Value{}, fmt.Errorf("eval: unreachable ref kind")
}

// preludeNamespace builds the record of builtins a hir.DefPrelude
// identifier (e.g. `list`, `string`) evaluates to: one field per
// "name.<field>" entry ev.builtins has registered, so `list.map(f, xs)`
// is ordinary field access followed by an ordinary call, same as any
// record of user-defined closures.
func (ev *Evaluator) preludeNamespace(name string) Value {
	fieldNames := ev.builtins.Namespace(name)
	fields := make([]source.Symbol, len(fieldNames))
	vals := make([]*Thunk, len(fieldNames))
	for i, f := range fieldNames {
		bi, _ := ev.builtins.Lookup(name + "." + f)
		fields[i] = ev.in.Intern(f)
		vals[i] = Forced(Value{Kind: KindBuiltin, Builtin: bi})
	}
	return Value{Kind: KindRecord, Fields: fields, Vals: vals}
}

func (ev *Evaluator) evalInterpString(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	var out string
	for _, seg := range e.Segments {
		if seg.Literal {
			out += ev.in.MustLookup(seg.Text)
			continue
		}
		v, err := ev.Eval(m, env, seg.Expr)
		if err != nil {
			return Value{}, err
		}
		s, err := ev.RealizeToString(v)
		if err != nil {
			return Value{}, err
		}
		out += s
	}
	return String(out), nil
}

func (ev *Evaluator) evalRecord(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	var fields []source.Symbol
	var vals []*Thunk
	if e.Spread != ast.NoExprID {
		base, err := ev.Eval(m, env, e.Spread)
		if err != nil {
			return Value{}, err
		}
		if base.Kind == KindRecord {
			fields = append(fields, base.Fields...)
			vals = append(vals, base.Vals...)
		}
	}
	for _, f := range e.Fields {
		t := ev.EvalThunk(m, env, f.Value)
		if i, ok := fieldIndex(Value{Fields: fields, Vals: vals}, f.Name); ok {
			vals[i] = t
			continue
		}
		fields = append(fields, f.Name)
		vals = append(vals, t)
	}
	return Value{Kind: KindRecord, Fields: fields, Vals: vals}, nil
}

func (ev *Evaluator) evalField(m *hir.Module, env *Env, e *ast.Expr, safe bool) (Value, error) {
	recv, err := ev.Eval(m, env, e.Receiver)
	if err != nil {
		if safe {
			return Unit, nil
		}
		return Value{}, err
	}
	if recv.Kind != KindRecord {
		return Value{}, fmt.Errorf("eval: field access on a non-record value")
	}
	i, ok := fieldIndex(recv, e.FieldN)
	if !ok {
		if safe {
			return Unit, nil
		}
		return Value{}, fmt.Errorf("eval: record has no field %q", ev.in.MustLookup(e.FieldN))
	}
	return recv.Vals[i].Force()
}

func (ev *Evaluator) evalIndex(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	recv, err := ev.Eval(m, env, e.Receiver)
	if err != nil {
		return Value{}, err
	}
	idxVal, err := ev.Eval(m, env, e.Index)
	if err != nil {
		return Value{}, err
	}
	n, ok := idxVal.Int.Int64()
	if !ok || n < 0 {
		return Value{}, fmt.Errorf("eval: list index out of range")
	}
	cur := recv
	for i := int64(0); i < n; i++ {
		if cur.Kind != KindList || cur.ListNil {
			return Value{}, fmt.Errorf("eval: list index out of range")
		}
		cur, err = cur.ListTail.Force()
		if err != nil {
			return Value{}, err
		}
	}
	if cur.Kind != KindList || cur.ListNil {
		return Value{}, fmt.Errorf("eval: list index out of range")
	}
	return cur.ListHead.Force()
}

func (ev *Evaluator) evalMatch(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	scrutinee := ev.EvalThunk(m, env, e.Scrutinee)
	for _, arm := range e.Arms {
		armEnv, ok, err := ev.Match(m, arm.Pattern, scrutinee, env)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			continue
		}
		if arm.Guard != ast.NoExprID {
			g, err := ev.Eval(m, armEnv, arm.Guard)
			if err != nil {
				return Value{}, err
			}
			if !g.Truthy() {
				continue
			}
		}
		return ev.Eval(m, armEnv, arm.Body)
	}
	return Value{}, fmt.Errorf("eval: no match arm matched (exhaustiveness should have prevented this)")
}

func (ev *Evaluator) evalIf(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	cond, err := ev.Eval(m, env, e.Cond)
	if err != nil {
		return Value{}, err
	}
	if cond.Truthy() {
		return ev.Eval(m, env, e.Then)
	}
	if e.Else == ast.NoExprID {
		return Unit, nil
	}
	return ev.Eval(m, env, e.Else)
}

func (ev *Evaluator) evalBlock(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	for _, b := range e.Bindings {
		t := ev.EvalThunk(m, env, b.Value)
		var ok bool
		var err error
		env, ok, err = ev.Match(m, b.Pattern, t, env)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return Value{}, fmt.Errorf("eval: let binding pattern did not match its value")
		}
	}
	return ev.Eval(m, env, e.Result)
}

func (ev *Evaluator) evalPipe(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	arg, err := ev.Eval(m, env, e.Left)
	if err != nil {
		return Value{}, err
	}
	fn, err := ev.Eval(m, env, e.Right)
	if err != nil {
		return Value{}, err
	}
	return ev.Apply(fn, []*Thunk{Forced(arg)})
}

// evalTry implements postfix `?`: Ok(v)/Some(v) unwraps to v, while
// Err(e)/None short-circuits by returning an error, which unwinds back
// through Eval's ordinary Go-error propagation to the enclosing function's
// own Apply — the same variant tags isAbsent already inspects for `??`.
func (ev *Evaluator) evalTry(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	v, err := ev.Eval(m, env, e.Operand)
	if err != nil {
		return Value{}, err
	}
	if v.Kind != KindVariant {
		return Value{}, fmt.Errorf("eval: `?` expects an Option or Result value")
	}
	switch ev.in.MustLookup(v.VariantName) {
	case "Ok", "Some":
		if len(v.Positional) == 0 {
			return Unit, nil
		}
		return v.Positional[0].Force()
	case "Err":
		if len(v.Positional) == 0 {
			return Value{}, fmt.Errorf("eval: `?` propagated Err")
		}
		payload, perr := v.Positional[0].Force()
		if perr != nil {
			return Value{}, perr
		}
		return Value{}, fmt.Errorf("eval: `?` propagated Err(%s)", payload.Render(ev.in))
	case "None":
		return Value{}, fmt.Errorf("eval: `?` propagated None")
	}
	return Value{}, fmt.Errorf("eval: `?` expects an Option or Result value")
}

func (ev *Evaluator) evalRange(m *hir.Module, env *Env, e *ast.Expr) (Value, error) {
	lo, err := ev.Eval(m, env, e.Left)
	if err != nil {
		return Value{}, err
	}
	hi, err := ev.Eval(m, env, e.Right)
	if err != nil {
		return Value{}, err
	}
	return rangeList(lo.Int, hi.Int, e.RangeIncl), nil
}

// rangeList builds a lazy ascending list of integers from lo to hi,
// generating each successor only when its cons cell's tail is forced —
// an endpoint far from lo never materializes the whole range up front.
func rangeList(lo, hi bignum.BigInt, inclusive bool) Value {
	cmp := lo.Cmp(hi)
	if inclusive {
		if cmp > 0 {
			return Nil
		}
	} else if cmp >= 0 {
		return Nil
	}
	one := bignum.IntFromInt64(1)
	var next bignum.BigInt
	next, err := bignum.IntAdd(lo, one)
	if err != nil {
		return Nil
	}
	return Cons(Forced(Int(lo)), NewThunk(func() (Value, error) {
		return rangeList(next, hi, inclusive), nil
	}))
}
