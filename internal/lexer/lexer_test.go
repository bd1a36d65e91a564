package lexer_test

import (
	"testing"

	"neve/internal/diag"
	"neve/internal/lexer"
	"neve/internal/source"
	"neve/internal/token"
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

func makeTestLexer(content string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.neve", []byte(content))
	rep := &testReporter{}
	return lexer.New(fs.Get(id), lexer.Options{Reporter: rep}), rep
}

func collectKinds(t *testing.T, content string) []token.Kind {
	t.Helper()
	lx, rep := makeTestLexer(content)
	var kinds []token.Kind
	for {
		tok := lx.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	if rep.HasErrors() {
		t.Fatalf("unexpected lexer errors for %q: %v", content, rep.diagnostics)
	}
	return kinds
}

func TestKeywordsAndIdents(t *testing.T) {
	got := collectKinds(t, "let x = fn")
	want := []token.Kind{token.KwLet, token.Ident, token.Assign, token.KwFn, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("at %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOperatorsGreedyMatch(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Kind
	}{
		{"->", token.Arrow},
		{"|>", token.PipeGt},
		{"++", token.PlusPlus},
		{"//", token.SlashSlash},
		{"??", token.QQ},
		{"?.", token.QDot},
		{"..", token.DotDot},
		{"&&", token.AndAnd},
		{"||", token.OrOr},
		{"==", token.EqEq},
		{"!=", token.BangEq},
		{"<=", token.LtEq},
		{">=", token.GtEq},
		{"#{", token.HashBrace},
		{"+", token.Plus},
		{"-", token.Minus},
		{".", token.Dot},
		{"?", token.Question},
	}
	for _, c := range cases {
		got := collectKinds(t, c.src)
		if got[0] != c.kind {
			t.Errorf("%q: got %v, want %v", c.src, got[0], c.kind)
		}
	}
}

func TestLineComment(t *testing.T) {
	lx, rep := makeTestLexer("let -- this is a comment\nx")
	first := lx.Next()
	if first.Kind != token.KwLet {
		t.Fatalf("expected KwLet, got %v", first.Kind)
	}
	second := lx.Next()
	if second.Kind != token.Ident {
		t.Fatalf("expected Ident, got %v", second.Kind)
	}
	if len(second.Leading) == 0 {
		t.Fatal("expected leading trivia to include the comment")
	}
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
}

func TestNestedBlockComment(t *testing.T) {
	lx, rep := makeTestLexer("--[ outer --[ inner ]-- still outer ]--let")
	tok := lx.Next()
	if tok.Kind != token.KwLet {
		t.Fatalf("expected KwLet after nested block comment, got %v", tok.Kind)
	}
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	lx, rep := makeTestLexer("--[ never closed")
	tok := lx.Next()
	if tok.Kind != token.EOF {
		t.Fatalf("expected EOF once the unterminated comment consumes the rest of input, got %v", tok.Kind)
	}
	if !rep.HasErrors() {
		t.Fatal("expected an unterminated block comment diagnostic")
	}
}

func TestStringLiteral(t *testing.T) {
	lx, rep := makeTestLexer(`"hello\nworld"`)
	tok := lx.Next()
	if tok.Kind != token.StringLit {
		t.Fatalf("expected StringLit, got %v", tok.Kind)
	}
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
}

func TestInterpolatedString(t *testing.T) {
	lx, rep := makeTestLexer("`hello {name} !`")
	tok := lx.Next()
	if tok.Kind != token.InterpString {
		t.Fatalf("expected InterpString, got %v", tok.Kind)
	}
	if len(tok.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(tok.Segments), tok.Segments)
	}
	if !tok.Segments[0].Literal || tok.Segments[0].Text != "hello " {
		t.Fatalf("unexpected first segment: %+v", tok.Segments[0])
	}
	if tok.Segments[1].Literal {
		t.Fatalf("expected second segment to be an expression: %+v", tok.Segments[1])
	}
	if len(tok.Segments[1].Tokens) != 1 || tok.Segments[1].Tokens[0].Kind != token.Ident {
		t.Fatalf("expected single Ident token in interpolation, got %+v", tok.Segments[1].Tokens)
	}
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
}

func TestMultilineString(t *testing.T) {
	lx, rep := makeTestLexer("\"\"\"\nfirst\nsecond\n\"\"\"")
	tok := lx.Next()
	if tok.Kind != token.MultilineStr {
		t.Fatalf("expected MultilineStr, got %v", tok.Kind)
	}
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
}

func TestCharLiteral(t *testing.T) {
	lx, rep := makeTestLexer(`'a'`)
	tok := lx.Next()
	if tok.Kind != token.CharLit {
		t.Fatalf("expected CharLit, got %v", tok.Kind)
	}
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		src     string
		kind    token.Kind
		intBase int
	}{
		{"42", token.IntLit, 10},
		{"0b1010", token.IntLit, 2},
		{"0o17", token.IntLit, 8},
		{"0xFF", token.IntLit, 16},
		{"3.14", token.FloatLit, 0},
		{".5", token.FloatLit, 0},
		{"1e10", token.FloatLit, 0},
		{"1_000", token.IntLit, 10},
	}
	for _, c := range cases {
		lx, rep := makeTestLexer(c.src)
		tok := lx.Next()
		if tok.Kind != c.kind {
			t.Errorf("%q: got kind %v, want %v", c.src, tok.Kind, c.kind)
		}
		if c.kind == token.IntLit && tok.IntBase != c.intBase {
			t.Errorf("%q: got base %d, want %d", c.src, tok.IntBase, c.intBase)
		}
		if rep.HasErrors() {
			t.Errorf("%q: unexpected errors: %v", c.src, rep.diagnostics)
		}
	}
}

func TestNumberThenRangeNotConsumed(t *testing.T) {
	got := collectKinds(t, "1..2")
	want := []token.Kind{token.IntLit, token.DotDot, token.IntLit, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("at %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPathLiteral(t *testing.T) {
	cases := []string{"./foo.neve", "../bar/baz.neve", "/abs/path"}
	for _, src := range cases {
		lx, rep := makeTestLexer(src)
		tok := lx.Next()
		if tok.Kind != token.PathLit {
			t.Errorf("%q: got %v, want PathLit", src, tok.Kind)
		}
		if rep.HasErrors() {
			t.Errorf("%q: unexpected errors: %v", src, rep.diagnostics)
		}
	}
}

func TestBoolLiteralsAreNotKeywords(t *testing.T) {
	lx, rep := makeTestLexer("true false")
	first := lx.Next()
	if first.Kind != token.BoolLit || !first.BoolValue {
		t.Fatalf("expected BoolLit true, got %+v", first)
	}
	second := lx.Next()
	if second.Kind != token.BoolLit || second.BoolValue {
		t.Fatalf("expected BoolLit false, got %+v", second)
	}
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.diagnostics)
	}
}

func TestUnterminatedStringReported(t *testing.T) {
	lx, rep := makeTestLexer(`"no closing quote`)
	tok := lx.Next()
	if tok.Kind != token.Invalid {
		t.Fatalf("expected Invalid, got %v", tok.Kind)
	}
	if !rep.HasErrors() {
		t.Fatal("expected an error diagnostic")
	}
}
