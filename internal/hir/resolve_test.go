package hir_test

import (
	"testing"

	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/hir"
	"neve/internal/lexer"
	"neve/internal/parser"
	"neve/internal/source"
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

func TestResolveSingleModuleFunctionBody(t *testing.T) {
	in := source.NewInterner()
	rep := &testReporter{}
	mod := parseModule(t, in, rep, `
fn add(x: Int, y: Int) -> Int { x + y }
let total = add(1, 2);
`)
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

	m, _ := prog.ModuleByPath("main")
	fnItem := mod.Items.Get(mod.File.Items[0])
	body := mod.Exprs.Get(fnItem.Body)
	result := mod.Exprs.Get(body.Result)
	ref, ok := prog.ExprRefs[hir.NodeKey{Module: m.ID, Node: uint32(result.Left)}]
	if !ok || ref.Kind != hir.RefLocal {
		t.Fatalf("expected 'x' to resolve to a local parameter binding, got %+v", ref)
	}
}

func TestResolveUndefinedNameReported(t *testing.T) {
	in := source.NewInterner()
	rep := &testReporter{}
	mod := parseModule(t, in, rep, `let x = y + 1;`)
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", rep.diagnostics)
	}

	prog := hir.NewProgram(in, rep)
	prog.AddModule("main", mod)
	prog.ResolveImports()
	prog.Resolve()

	if !rep.hasCode(diag.HirUnresolvedName) {
		t.Fatalf("expected an unresolved-name diagnostic, got: %v", rep.diagnostics)
	}
}

func TestResolveDuplicateDefinitionReported(t *testing.T) {
	in := source.NewInterner()
	rep := &testReporter{}
	mod := parseModule(t, in, rep, `
let x = 1;
let x = 2;
`)
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", rep.diagnostics)
	}

	prog := hir.NewProgram(in, rep)
	prog.AddModule("main", mod)
	if !rep.hasCode(diag.HirDuplicateDefinition) {
		t.Fatalf("expected a duplicate-definition diagnostic, got: %v", rep.diagnostics)
	}
}

func TestResolveImportBindsExportedName(t *testing.T) {
	in := source.NewInterner()
	rep := &testReporter{}
	libMod := parseModule(t, in, rep, `pub let answer = 42;`)
	mainMod := parseModule(t, in, rep, `
import lib.answer;
let x = answer;
`)
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", rep.diagnostics)
	}

	prog := hir.NewProgram(in, rep)
	prog.AddModule("lib", libMod)
	prog.AddModule("main", mainMod)
	prog.ResolveImports()
	prog.Resolve()
	if rep.HasErrors() {
		t.Fatalf("unexpected resolve errors: %v", rep.diagnostics)
	}

	mainModule, _ := prog.ModuleByPath("main")
	letItem := mainMod.Items.Get(mainMod.File.Items[1])
	val := mainMod.Exprs.Get(letItem.Value)
	ref, ok := prog.ExprRefs[hir.NodeKey{Module: mainModule.ID, Node: uint32(letItem.Value)}]
	if !ok || ref.Kind != hir.RefDef {
		t.Fatalf("expected 'answer' to resolve to the imported Def, got %+v (expr kind %v)", ref, val.Kind)
	}
}

func TestResolveCyclicReExportReported(t *testing.T) {
	in := source.NewInterner()
	rep := &testReporter{}
	aMod := parseModule(t, in, rep, `pub import b.thing;`)
	bMod := parseModule(t, in, rep, `pub import a.thing;`)
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", rep.diagnostics)
	}

	prog := hir.NewProgram(in, rep)
	prog.AddModule("a", aMod)
	prog.AddModule("b", bMod)
	prog.ResolveImports()

	if !rep.hasCode(diag.HirImportCycle) {
		t.Fatalf("expected a cyclic re-export diagnostic, got: %v", rep.diagnostics)
	}
}

func TestResolveMatchArmBindingsScopedPerArm(t *testing.T) {
	in := source.NewInterner()
	rep := &testReporter{}
	mod := parseModule(t, in, rep, `
enum Option<T> {
	Some(T),
	None,
}

let describe = fn(v) match v {
	Some(n) -> n,
	None -> 0,
};
`)
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
}

func TestResolveTopLevelTuplePatternDeclaresBothNames(t *testing.T) {
	in := source.NewInterner()
	rep := &testReporter{}
	mod := parseModule(t, in, rep, `
let (a, b) = (1, 2);
let sum = a + b;
`)
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
}
