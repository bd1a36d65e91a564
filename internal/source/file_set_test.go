package source

import "testing"

func TestFileSetAddAndResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("repl.neve", []byte("let x = 1\nlet y = 2\n"))

	f := fs.Get(id)
	if f.Flags&FileVirtual == 0 {
		t.Fatal("virtual file must carry FileVirtual")
	}

	start, end := fs.Resolve(Span{File: id, Start: 15, End: 16})
	if start.Line != 2 {
		t.Fatalf("expected offset 15 on line 2, got line %d", start.Line)
	}
	if end.Line != start.Line {
		t.Fatalf("one-byte span should not cross lines: %+v %+v", start, end)
	}
}

func TestFileSetGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("m.neve", []byte("a\nbb\nccc"))
	f := fs.Get(id)

	cases := []struct {
		line uint32
		want string
	}{
		{1, "a"},
		{2, "bb"},
		{3, "ccc"},
		{4, ""},
	}
	for _, c := range cases {
		if got := f.GetLine(c.line); got != c.want {
			t.Errorf("GetLine(%d) = %q, want %q", c.line, got, c.want)
		}
	}
}

func TestFileSetGetLatestTracksOverwrite(t *testing.T) {
	fs := NewFileSet()
	fs.AddVirtual("dup.neve", []byte("first"))
	second := fs.AddVirtual("dup.neve", []byte("second"))

	id, ok := fs.GetLatest("dup.neve")
	if !ok || id != second {
		t.Fatalf("GetLatest should resolve to the most recently added version, got %d ok=%v", id, ok)
	}
}

func TestFileSetNormalizesCRLFAndBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\r\n")...)
	fs := NewFileSet()
	id := fs.Add("x.neve", normalizeForTest(content), 0)
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("expected normalized content, got %q", f.Content)
	}
}

func normalizeForTest(content []byte) []byte {
	content, _ = removeBOM(content)
	content, _ = normalizeCRLF(content)
	return content
}
