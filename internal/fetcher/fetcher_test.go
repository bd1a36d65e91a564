package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"neve/internal/deriv"
	"neve/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestFetchLocalFileVerifiesHash(t *testing.T) {
	s := openTestStore(t)
	f := New(s)

	srcDir := t.TempDir()
	content := []byte("hello neve")
	path := filepath.Join(srcDir, "payload.txt")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	hash := deriv.HashBytes(content)
	p, err := f.Fetch(context.Background(), Source{
		Kind: KindLocal, Name: "payload", Path: path,
		HashAlgorithm: deriv.HashBlake3, ExpectedHash: hash,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !s.Exists(p) {
		t.Fatalf("fetched path %s not present in store", p)
	}
}

func TestFetchLocalFileRejectsHashMismatch(t *testing.T) {
	s := openTestStore(t)
	f := New(s)

	srcDir := t.TempDir()
	path := filepath.Join(srcDir, "payload.txt")
	if err := os.WriteFile(path, []byte("hello neve"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := f.Fetch(context.Background(), Source{
		Kind: KindLocal, Name: "payload", Path: path,
		HashAlgorithm: deriv.HashBlake3, ExpectedHash: deriv.HashBytes([]byte("other content")),
	})
	var mismatch *HashMismatchError
	if err == nil {
		t.Fatal("expected hash mismatch error")
	}
	if !asHashMismatch(err, &mismatch) {
		t.Fatalf("expected *HashMismatchError, got %T: %v", err, err)
	}
}

func TestFetchLocalDirectory(t *testing.T) {
	s := openTestStore(t)
	f := New(s)

	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(srcDir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "sub", "b.txt"), []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := f.Fetch(context.Background(), Source{Kind: KindLocal, Name: "tree", Path: srcDir})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !s.Exists(p) {
		t.Fatalf("fetched directory %s not present in store", p)
	}
}

func TestArchiveFormatFromName(t *testing.T) {
	cases := map[string]archiveFormat{
		"https://example.com/pkg-1.0.tar.gz": archiveTarGz,
		"pkg-1.0.tgz":                        archiveTarGz,
		"pkg-1.0.tar":                        archiveTar,
	}
	for name, want := range cases {
		got, ok := archiveFormatFromName(name)
		if !ok || got != want {
			t.Errorf("archiveFormatFromName(%q) = %v, %v; want %v, true", name, got, ok, want)
		}
	}
	if _, ok := archiveFormatFromName("pkg-1.0.zip"); ok {
		t.Errorf("expected .zip to be unrecognized")
	}
}

func asHashMismatch(err error, target **HashMismatchError) bool {
	if m, ok := err.(*HashMismatchError); ok {
		*target = m
		return true
	}
	return false
}
