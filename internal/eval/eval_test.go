package eval_test

import (
	"testing"

	"neve/internal/diag"
	"neve/internal/eval"
	"neve/internal/hir"
	"neve/internal/lexer"
	"neve/internal/parser"
	"neve/internal/source"
)

type testReporter struct{ diagnostics []diag.Diagnostic }

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes, Fixes: fixes})
}

func (r *testReporter) HasErrors() bool {
	for _, d := range r.diagnostics {
		if d.Severity == diag.SevError {
			return true
		}
	}
	return false
}

// resolveProgram parses and name-resolves content, failing the test on any
// parse/resolve error, and returns everything Eval needs.
func resolveProgram(t *testing.T, content string) (*hir.Program, *hir.Module, *source.Interner) {
	t.Helper()
	in := source.NewInterner()
	rep := &testReporter{}
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.neve", []byte(content))
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	res := parser.ParseFile(fs, in, lx, parser.Options{Reporter: rep})
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", rep.diagnostics)
	}

	prog := hir.NewProgram(in, rep)
	m := prog.AddModule("main", res.Module)
	prog.ResolveImports()
	prog.Resolve()
	if rep.HasErrors() {
		t.Fatalf("unexpected resolve errors: %v", rep.diagnostics)
	}
	return prog, m, in
}

func defNamed(t *testing.T, prog *hir.Program, in *source.Interner, m *hir.Module, name string) hir.DefID {
	t.Helper()
	for _, defID := range m.Defs {
		if in.MustLookup(prog.Def(defID).Name) == name {
			return defID
		}
	}
	t.Fatalf("no def named %q", name)
	return hir.NoDefID
}

func evalLet(t *testing.T, content, name string) (eval.Value, error) {
	t.Helper()
	prog, m, in := resolveProgram(t, content)
	ev := eval.NewEvaluator(prog, in, eval.NewBuiltins())
	defID := defNamed(t, prog, in, m, name)
	return ev.Global(defID).Force()
}

func TestEvalArithmetic(t *testing.T) {
	v, err := evalLet(t, `let result = 2 + 3 * 4;`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Render(nil) != "14" {
		t.Fatalf("got %s, want 14", v.Render(nil))
	}
}

func TestEvalIfExpression(t *testing.T) {
	v, err := evalLet(t, `let result = if 1 < 2 { "yes" } else { "no" };`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Kind != eval.KindString || v.Str != "yes" {
		t.Fatalf("got %+v", v)
	}
}

func TestEvalLetBlockBinding(t *testing.T) {
	v, err := evalLet(t, `
		let result = {
			let x = 10;
			let y = 20;
			x + y
		};`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Render(nil) != "30" {
		t.Fatalf("got %s", v.Render(nil))
	}
}

func TestEvalLambdaApplication(t *testing.T) {
	v, err := evalLet(t, `
		let addOne = fn(x) { x + 1 };
		let result = addOne(41);`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Render(nil) != "42" {
		t.Fatalf("got %s", v.Render(nil))
	}
}

func TestEvalFunctionDeclarationAndCall(t *testing.T) {
	v, err := evalLet(t, `
		fn double(x) { x * 2 }
		let result = double(21);`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Render(nil) != "42" {
		t.Fatalf("got %s", v.Render(nil))
	}
}

func TestEvalTailRecursiveFunctionDoesNotOverflowStack(t *testing.T) {
	v, err := evalLet(t, `
		fn countUp(n, limit, acc) {
			if n > limit { acc } else { countUp(n + 1, limit, acc + n) }
		}
		let result = countUp(1, 200000, 0);`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Kind != eval.KindInt {
		t.Fatalf("got %+v", v)
	}
}

func TestEvalMatchOverList(t *testing.T) {
	v, err := evalLet(t, `
		fn headOr(xs, default) {
			match xs {
				[] -> default,
				[h, ..rest] -> h,
			}
		}
		let result = headOr([1, 2, 3], 0);`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Render(nil) != "1" {
		t.Fatalf("got %s", v.Render(nil))
	}
}

func TestEvalMatchListHeadAndRest(t *testing.T) {
	v, err := evalLet(t, `
		let result = match [1, 2, 3] {
			[h, ..rest] -> h,
		};`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Render(nil) != "1" {
		t.Fatalf("got %s", v.Render(nil))
	}
}

func TestEvalRecordFieldAccess(t *testing.T) {
	v, err := evalLet(t, `
		let p = #{ x = 1, y = 2 };
		let result = p.x + p.y;`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Render(nil) != "3" {
		t.Fatalf("got %s", v.Render(nil))
	}
}

func TestEvalStringConcat(t *testing.T) {
	v, err := evalLet(t, `let result = "foo" ++ "bar";`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Str != "foobar" {
		t.Fatalf("got %q", v.Str)
	}
}

func TestEvalListConcat(t *testing.T) {
	v, err := evalLet(t, `let result = [1, 2] ++ [3, 4];`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	want := "[1, 2, 3, 4]"
	if v.Render(nil) != want {
		t.Fatalf("got %s, want %s", v.Render(nil), want)
	}
}

func TestEvalTupleDestructuring(t *testing.T) {
	v, err := evalLet(t, `
		let pair = (1, 2);
		let result = {
			let (a, b) = pair;
			a + b
		};`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Render(nil) != "3" {
		t.Fatalf("got %s", v.Render(nil))
	}
}

func TestEvalLazyBindingNeverForcedIsNeverEvaluated(t *testing.T) {
	v, err := evalLet(t, `
		let result = {
			let unused = 1 / 0;
			42
		};`, "result")
	if err != nil {
		t.Fatalf("eval: %v (unused binding should not be forced)", err)
	}
	if v.Render(nil) != "42" {
		t.Fatalf("got %s", v.Render(nil))
	}
}
