package token

import "testing"

func TestKindStringKnown(t *testing.T) {
	if got := KwLet.String(); got != "let" {
		t.Fatalf("KwLet.String() = %q, want %q", got, "let")
	}
	if got := Arrow.String(); got != "->" {
		t.Fatalf("Arrow.String() = %q, want %q", got, "->")
	}
}

func TestKindStringUnknownDoesNotPanic(t *testing.T) {
	var k Kind = 250
	if got := k.String(); got != "Kind(?)" {
		t.Fatalf("unknown Kind.String() = %q, want %q", got, "Kind(?)")
	}
}

func TestExactlySeventeenKeywords(t *testing.T) {
	if got := len(keywords); got != 17 {
		t.Fatalf("len(keywords) = %d, want 17", got)
	}
}
