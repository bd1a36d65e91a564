package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 5, End: 10}
	b := Span{File: 1, Start: 8, End: 20}
	got := a.Cover(b)
	want := Span{File: 1, Start: 5, End: 20}
	if got != want {
		t.Fatalf("Cover() = %+v, want %+v", got, want)
	}
}

func TestSpanCoverDifferentFiles(t *testing.T) {
	a := Span{File: 1, Start: 0, End: 5}
	b := Span{File: 2, Start: 0, End: 5}
	if got := a.Cover(b); got != a {
		t.Fatalf("Cover() across files should return the receiver unchanged, got %+v", got)
	}
}

func TestSpanEmptyAndLen(t *testing.T) {
	s := Span{Start: 3, End: 3}
	if !s.Empty() {
		t.Fatal("span with Start == End should be Empty")
	}
	s.End = 7
	if s.Empty() {
		t.Fatal("span with Start != End should not be Empty")
	}
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
}

func TestSpanShift(t *testing.T) {
	s := Span{File: 1, Start: 10, End: 20}
	if got := s.ShiftRight(5); got != (Span{File: 1, Start: 15, End: 25}) {
		t.Fatalf("ShiftRight = %+v", got)
	}
	if got := s.ShiftLeft(5); got != (Span{File: 1, Start: 5, End: 15}) {
		t.Fatalf("ShiftLeft = %+v", got)
	}
}
