package sema_test

import (
	"testing"

	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/hir"
	"neve/internal/lexer"
	"neve/internal/parser"
	"neve/internal/sema"
	"neve/internal/source"
	"neve/internal/types"
)

type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes, Fixes: fixes,
	})
}

func (r *testReporter) HasErrors() bool {
	for _, d := range r.diagnostics {
		if d.Severity == diag.SevError {
			return true
		}
	}
	return false
}

func (r *testReporter) hasCode(code diag.Code) bool {
	for _, d := range r.diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}

func parseModule(t *testing.T, in *source.Interner, rep diag.Reporter, content string) *ast.Module {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.neve", []byte(content))
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	res := parser.ParseFile(fs, in, lx, parser.Options{Reporter: rep})
	return res.Module
}

// check parses, resolves, and type-checks content in one module, failing
// the test on any parse or resolve error (but not on type errors, which
// individual tests assert on directly).
func check(t *testing.T, content string) (*hir.Program, *sema.Checker, *testReporter, *source.Interner) {
	t.Helper()
	in := source.NewInterner()
	rep := &testReporter{}
	mod := parseModule(t, in, rep, content)
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", rep.diagnostics)
	}

	prog := hir.NewProgram(in, rep)
	prog.AddModule("main", mod)
	prog.ResolveImports()
	prog.Resolve()
	if rep.HasErrors() {
		t.Fatalf("unexpected resolve errors: %v", rep.diagnostics)
	}

	store := types.NewStore()
	c := sema.NewChecker(prog, in, rep, store)
	c.Check()
	return prog, c, rep, in
}

func defNamed(t *testing.T, prog *hir.Program, in *source.Interner, name string) hir.DefID {
	t.Helper()
	for _, m := range prog.Modules() {
		for _, defID := range m.Defs {
			def := prog.Def(defID)
			if in.MustLookup(def.Name) == name {
				return defID
			}
		}
	}
	t.Fatalf("no def named %q", name)
	return hir.NoDefID
}

func TestCheckInfersIdentityFunctionSignature(t *testing.T) {
	prog, c, rep, in := check(t, `
fn id(x) { x }
let y = id(1);
let z = id(true);
`)
	if rep.HasErrors() {
		t.Fatalf("unexpected type errors: %v", rep.diagnostics)
	}
	idDef := defNamed(t, prog, in, "id")
	scheme, ok := c.SchemeOf(idDef)
	if !ok {
		t.Fatalf("id has no generalized scheme")
	}
	if len(scheme.Vars) != 1 {
		t.Fatalf("expected id to be generalized over exactly one type variable, got %d", len(scheme.Vars))
	}
}

func TestCheckDetectsArithmeticMismatch(t *testing.T) {
	_, _, rep, _ := check(t, `
let x = 1 + true;
`)
	if !rep.hasCode(diag.TypeMismatch) {
		t.Fatalf("expected a type mismatch diagnostic, got: %v", rep.diagnostics)
	}
}

func TestCheckEnumVariantConstructorInstantiates(t *testing.T) {
	_, _, rep, _ := check(t, `
enum Option<T> {
	Some(T),
	None,
}

let a = Some(1);
let b = Some(true);
`)
	if rep.HasErrors() {
		t.Fatalf("unexpected type errors: %v", rep.diagnostics)
	}
}

func TestCheckMatchOverEnumUnifiesArms(t *testing.T) {
	_, _, rep, _ := check(t, `
enum Option<T> {
	Some(T),
	None,
}

let describe = fn(v) match v {
	Some(n) -> n,
	None -> 0,
};
let x = describe(Some(1));
`)
	if rep.HasErrors() {
		t.Fatalf("unexpected type errors: %v", rep.diagnostics)
	}
}

func TestCheckNonExhaustiveMatchReported(t *testing.T) {
	_, _, rep, _ := check(t, `
enum Option<T> {
	Some(T),
	None,
}

let unwrap = fn(v) match v {
	Some(n) -> n,
};
`)
	if !rep.hasCode(diag.TypeNonExhaustiveMatch) {
		t.Fatalf("expected a non-exhaustive-match diagnostic, got: %v", rep.diagnostics)
	}
}

func TestCheckRecordFieldAccessIsRowPolymorphic(t *testing.T) {
	_, _, rep, _ := check(t, `
let name = fn(r) { r.name };
let a = name(#{ name = "ada", age = 30 });
let b = name(#{ name = "linus" });
`)
	if rep.HasErrors() {
		t.Fatalf("unexpected type errors: %v", rep.diagnostics)
	}
}

func TestCheckTupleDestructuringLetAssignsEachName(t *testing.T) {
	_, _, rep, _ := check(t, `
let (a, b) = (1, true);
let c = a + 1;
`)
	if rep.HasErrors() {
		t.Fatalf("unexpected type errors: %v", rep.diagnostics)
	}
}

func TestCheckStructFieldTypesElaborate(t *testing.T) {
	_, _, rep, _ := check(t, `
struct Point {
	x: Int,
	y: Int,
}

let origin = #{ x = 0, y = 0 };
`)
	if rep.HasErrors() {
		t.Fatalf("unexpected type errors: %v", rep.diagnostics)
	}
}
