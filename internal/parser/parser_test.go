package parser_test

import (
	"testing"

	"neve/internal/ast"
	"neve/internal/diag"
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

func parseSource(t *testing.T, content string) (*ast.Module, *testReporter) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.neve", []byte(content))
	in := source.NewInterner()
	rep := &testReporter{}
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	res := parser.ParseFile(fs, in, lx, parser.Options{Reporter: rep})
	return res.Module, rep
}

func TestParseLetItem(t *testing.T) {
	mod, rep := parseSource(t, `let x: Int = 1 + 2;`)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
	if len(mod.File.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(mod.File.Items))
	}
	item := mod.Items.Get(mod.File.Items[0])
	if item.Kind != ast.ItemLet {
		t.Fatalf("expected ItemLet, got %v", item.Kind)
	}
	val := mod.Exprs.Get(item.Value)
	if val.Kind != ast.ExprBinary || val.BinOp != ast.OpAdd {
		t.Fatalf("expected a '+' binary expression, got %v", val.Kind)
	}
}

func TestParseFnItemAndPrecedence(t *testing.T) {
	mod, rep := parseSource(t, `fn add(x: Int, y: Int) -> Int { x + y * 2 }`)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
	item := mod.Items.Get(mod.File.Items[0])
	if item.Kind != ast.ItemFn || len(item.Params) != 2 {
		t.Fatalf("unexpected fn item: %+v", item)
	}
	body := mod.Exprs.Get(item.Body)
	result := mod.Exprs.Get(body.Result)
	if result.Kind != ast.ExprBinary || result.BinOp != ast.OpAdd {
		t.Fatalf("expected top-level '+', got %v", result.Kind)
	}
	right := mod.Exprs.Get(result.Right)
	if right.Kind != ast.ExprBinary || right.BinOp != ast.OpMul {
		t.Fatalf("expected '*' to bind tighter than '+', got %v", right.Kind)
	}
}

func TestParsePowRightAssociativity(t *testing.T) {
	mod, rep := parseSource(t, `let x = 2 ^ 3 ^ 2;`)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
	item := mod.Items.Get(mod.File.Items[0])
	top := mod.Exprs.Get(item.Value)
	if top.Kind != ast.ExprBinary || top.BinOp != ast.OpPow {
		t.Fatalf("expected '^' at the top, got %v", top.Kind)
	}
	right := mod.Exprs.Get(top.Right)
	if right.Kind != ast.ExprBinary || right.BinOp != ast.OpPow {
		t.Fatalf("expected '^' to be right-associative, got %v", right.Kind)
	}
}

func TestParsePipeExpression(t *testing.T) {
	mod, rep := parseSource(t, `let x = xs |> map(f) |> sum;`)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
	item := mod.Items.Get(mod.File.Items[0])
	top := mod.Exprs.Get(item.Value)
	if top.Kind != ast.ExprPipe {
		t.Fatalf("expected a pipe expression, got %v", top.Kind)
	}
}

func TestParseListComprehension(t *testing.T) {
	mod, rep := parseSource(t, `let x = [y * 2 | y <- xs, if y > 1];`)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
	item := mod.Items.Get(mod.File.Items[0])
	comp := mod.Exprs.Get(item.Value)
	if comp.Kind != ast.ExprListComp {
		t.Fatalf("expected a list comprehension, got %v", comp.Kind)
	}
	if len(comp.Generators) != 1 || len(comp.Guards) != 1 {
		t.Fatalf("expected 1 generator and 1 guard, got %d/%d", len(comp.Generators), len(comp.Guards))
	}
}

func TestParseRecordLiteralAndMatch(t *testing.T) {
	mod, rep := parseSource(t, `
let p = #{ x = 1, y = 2 };
let r = match p {
	#{ x, y } if x == y -> 0,
	_ -> 1,
};
`)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
	if len(mod.File.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(mod.File.Items))
	}
	rec := mod.Exprs.Get(mod.Items.Get(mod.File.Items[0]).Value)
	if rec.Kind != ast.ExprRecord || len(rec.Fields) != 2 {
		t.Fatalf("unexpected record literal: %+v", rec)
	}
	matchExpr := mod.Exprs.Get(mod.Items.Get(mod.File.Items[1]).Value)
	if matchExpr.Kind != ast.ExprMatch || len(matchExpr.Arms) != 2 {
		t.Fatalf("unexpected match expression: %+v", matchExpr)
	}
	if matchExpr.Arms[0].Guard == ast.NoExprID {
		t.Fatalf("expected the first arm to have a guard")
	}
}

func TestParseEnumAndTrait(t *testing.T) {
	mod, rep := parseSource(t, `
enum Option<T> {
	Some(T),
	None,
}

trait Show {
	fn show(self: Self) -> String;
}
`)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
	if len(mod.File.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(mod.File.Items))
	}
	enumItem := mod.Items.Get(mod.File.Items[0])
	if enumItem.Kind != ast.ItemEnum || len(enumItem.Variants) != 2 {
		t.Fatalf("unexpected enum item: %+v", enumItem)
	}
	traitItem := mod.Items.Get(mod.File.Items[1])
	if traitItem.Kind != ast.ItemTrait || len(traitItem.Methods) != 1 {
		t.Fatalf("unexpected trait item: %+v", traitItem)
	}
}

func TestParseImportWithAlias(t *testing.T) {
	mod, rep := parseSource(t, `pub import std.list as list;`)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
	item := mod.Items.Get(mod.File.Items[0])
	if item.Kind != ast.ItemImport || item.Vis != ast.VisPublic {
		t.Fatalf("unexpected import item: %+v", item)
	}
	if len(item.Path) != 2 {
		t.Fatalf("expected a 2-segment module path, got %d", len(item.Path))
	}
}

func TestParseErrorRecoversToNextItem(t *testing.T) {
	mod, rep := parseSource(t, `
let x = ;
let y = 1;
`)
	if !rep.HasErrors() {
		t.Fatalf("expected a syntax error for the malformed first item")
	}
	if len(mod.File.Items) != 1 {
		t.Fatalf("expected recovery to still parse the second item, got %d items", len(mod.File.Items))
	}
	second := mod.Items.Get(mod.File.Items[0])
	if second.Kind != ast.ItemLet {
		t.Fatalf("expected the recovered item to be a let, got %v", second.Kind)
	}
}
