package token

import "testing"

func TestLookupKeyword(t *testing.T) {
	cases := []struct {
		ident string
		want  Kind
	}{
		{"let", KwLet}, {"fn", KwFn}, {"match", KwMatch}, {"lazy", KwLazy},
		{"self", KwSelf}, {"super", KwSuper}, {"crate", KwCrate},
	}
	for _, c := range cases {
		got, ok := LookupKeyword(c.ident)
		if !ok || got != c.want {
			t.Errorf("LookupKeyword(%q) = (%v, %v), want (%v, true)", c.ident, got, ok, c.want)
		}
	}
}

func TestLookupKeywordRejectsNonKeywords(t *testing.T) {
	for _, ident := range []string{"Let", "foo", "true", "false", ""} {
		if _, ok := LookupKeyword(ident); ok {
			t.Errorf("LookupKeyword(%q) unexpectedly matched a keyword", ident)
		}
	}
}

func TestLookupBoolLiteral(t *testing.T) {
	if v, ok := LookupBoolLiteral("true"); !ok || v != true {
		t.Fatalf("LookupBoolLiteral(true) = (%v, %v)", v, ok)
	}
	if v, ok := LookupBoolLiteral("false"); !ok || v != false {
		t.Fatalf("LookupBoolLiteral(false) = (%v, %v)", v, ok)
	}
	if _, ok := LookupBoolLiteral("let"); ok {
		t.Fatal("LookupBoolLiteral(let) should fail")
	}
}
