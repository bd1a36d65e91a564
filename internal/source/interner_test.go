package source

import "testing"

func TestInternerBasic(t *testing.T) {
	in := NewInterner()

	if s, ok := in.Lookup(NoSymbol); !ok || s != "" {
		t.Fatalf("NoSymbol should resolve to the empty string, got %q ok=%v", s, ok)
	}

	id1 := in.Intern("hello")
	if id1 == NoSymbol {
		t.Fatal("interning a non-empty string must not return NoSymbol")
	}

	id2 := in.Intern("hello")
	if id1 != id2 {
		t.Fatalf("interning the same string twice returned different symbols: %d != %d", id1, id2)
	}

	if s, ok := in.Lookup(id1); !ok || s != "hello" {
		t.Fatalf("Lookup returned %q ok=%v, want %q true", s, ok, "hello")
	}

	id3 := in.Intern("world")
	if id3 == id1 {
		t.Fatal("distinct strings must get distinct symbols")
	}

	if got := in.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
}

func TestInternerBytes(t *testing.T) {
	in := NewInterner()
	byBytes := in.InternBytes([]byte("test"))
	byString := in.Intern("test")
	if byBytes != byString {
		t.Fatalf("InternBytes and Intern disagreed: %d != %d", byBytes, byString)
	}
}

func TestInternerLookupOutOfRange(t *testing.T) {
	in := NewInterner()
	if _, ok := in.Lookup(Symbol(99)); ok {
		t.Fatal("Lookup of an unknown symbol should fail")
	}
}

func TestInternerMustLookupPanics(t *testing.T) {
	in := NewInterner()
	defer func() {
		if recover() == nil {
			t.Fatal("MustLookup should panic on an invalid symbol")
		}
	}()
	in.MustLookup(Symbol(42))
}

func TestInternerSnapshotIsDefensiveCopy(t *testing.T) {
	in := NewInterner()
	in.Intern("a")
	snap := in.Snapshot()
	snap[0] = "mutated"
	if s, _ := in.Lookup(NoSymbol); s == "mutated" {
		t.Fatal("mutating the snapshot must not affect the interner")
	}
}
