package stdlib_test

import (
	"testing"

	"neve/internal/diag"
	"neve/internal/eval"
	"neve/internal/hir"
	"neve/internal/lexer"
	"neve/internal/parser"
	"neve/internal/source"
	"neve/internal/stdlib"
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

func evalLet(t *testing.T, content, name string) (eval.Value, error) {
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

	builtins := eval.NewBuiltins()
	stdlib.Register(builtins)
	ev := eval.NewEvaluator(prog, in, builtins)

	var defID hir.DefID = hir.NoDefID
	for _, d := range m.Defs {
		if in.MustLookup(prog.Def(d).Name) == name {
			defID = d
			break
		}
	}
	if defID == hir.NoDefID {
		t.Fatalf("no def named %q", name)
	}
	return ev.Global(defID).Force()
}

func TestListMapFilterFold(t *testing.T) {
	v, err := evalLet(t, `
		fn isEven(x) { x % 2 == 0 }
		fn double(x) { x * 2 }
		fn add(a, b) { a + b }
		let doubled = list.map(double, [1, 2, 3]);
		let evens = list.filter(isEven, [1, 2, 3, 4, 5, 6]);
		let result = list.fold(add, 0, doubled) + list.fold(add, 0, evens);`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	// doubled = [2,4,6] sum 12; evens = [2,4,6] sum 12; total 24
	if v.Render(nil) != "24" {
		t.Fatalf("got %s, want 24", v.Render(nil))
	}
}

func TestListMapIsLazyOverInfiniteHead(t *testing.T) {
	v, err := evalLet(t, `
		fn inc(x) { x + 1 }
		let mapped = list.map(inc, [1, 2, 3]);
		let result = list.head(mapped);`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Render(nil) != "2" {
		t.Fatalf("got %s, want 2", v.Render(nil))
	}
}

func TestListTakeDropZipReverseConcat(t *testing.T) {
	v, err := evalLet(t, `
		let taken = list.take(2, [1, 2, 3, 4]);
		let dropped = list.drop(2, [1, 2, 3, 4]);
		let zipped = list.zip([1, 2], ["a", "b"]);
		let rev = list.reverse([1, 2, 3]);
		let cat = list.concat([[1, 2], [3], [4, 5]]);
		let result = list.length(taken) + list.length(dropped) + list.length(zipped) + list.length(rev) + list.length(cat);`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Render(nil) != "14" {
		t.Fatalf("got %s, want 14", v.Render(nil))
	}
}

func TestStringModule(t *testing.T) {
	v, err := evalLet(t, `
		let upper = string.to_upper("hello");
		let trimmed = string.trim("  hi  ");
		let parts = string.split("a,b,c", ",");
		let result = upper ++ "/" ++ trimmed ++ "/" ++ string.concat(parts);`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Str != "HELLO/hi/abc" {
		t.Fatalf("got %q", v.Str)
	}
}

func TestMathModule(t *testing.T) {
	v, err := evalLet(t, `
		let result = math.abs(0 - 5) + math.max(3, 9) + math.min(3, 9) + math.pow(2, 10);`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	// 5 + 9 + 3 + 1024 = 1041
	if v.Render(nil) != "1041" {
		t.Fatalf("got %s, want 1041", v.Render(nil))
	}
}

func TestOptionModule(t *testing.T) {
	v, err := evalLet(t, `
		fn incOpt(x) { x + 1 }
		let m = map.insert(map.empty(), "a", 5);
		let found = map.get(m, "a");
		let missing = map.get(m, "b");
		let mapped = option.map(incOpt, found);
		let result = option.with_default(mapped, 0) + option.with_default(missing, 100);`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	// found -> Some(5) -> mapped Some(6) -> with_default 6; missing -> None -> with_default 100; total 106
	if v.Render(nil) != "106" {
		t.Fatalf("got %s, want 106", v.Render(nil))
	}
}

func TestCollectionsMapSet(t *testing.T) {
	v, err := evalLet(t, `
		let m0 = map.empty();
		let m1 = map.insert(m0, "a", 1);
		let m2 = map.insert(m1, "b", 2);
		let s0 = set.from_list([1, 2, 2, 3]);
		let result = map.size(m2) + set.size(s0);`, "result")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Render(nil) != "5" {
		t.Fatalf("got %s, want 5", v.Render(nil))
	}
}
