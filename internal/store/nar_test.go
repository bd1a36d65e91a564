package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestNarRoundTripPreservesRegularFileContent(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "hello.txt"), []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	nar, err := CreateNar(src)
	if err != nil {
		t.Fatalf("CreateNar: %v", err)
	}

	dest := t.TempDir()
	out := filepath.Join(dest, "extracted")
	if err := ExtractNar(nar, out); err != nil {
		t.Fatalf("ExtractNar: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(out, "hello.txt"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestNarRoundTripPreservesExecutableBit(t *testing.T) {
	src := t.TempDir()
	script := filepath.Join(src, "run.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho hi\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	nar, err := CreateNar(src)
	if err != nil {
		t.Fatalf("CreateNar: %v", err)
	}
	dest := t.TempDir()
	out := filepath.Join(dest, "extracted")
	if err := ExtractNar(nar, out); err != nil {
		t.Fatalf("ExtractNar: %v", err)
	}

	info, err := os.Stat(filepath.Join(out, "run.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&0o111 == 0 {
		t.Fatalf("expected executable bit to survive round trip, got mode %v", info.Mode())
	}
}

func TestNarRoundTripPreservesSymlinkTarget(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "real.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("real.txt", filepath.Join(src, "link.txt")); err != nil {
		t.Fatal(err)
	}

	nar, err := CreateNar(src)
	if err != nil {
		t.Fatalf("CreateNar: %v", err)
	}
	dest := t.TempDir()
	out := filepath.Join(dest, "extracted")
	if err := ExtractNar(nar, out); err != nil {
		t.Fatalf("ExtractNar: %v", err)
	}

	target, err := os.Readlink(filepath.Join(out, "link.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if target != "real.txt" {
		t.Fatalf("symlink target mismatch: %q", target)
	}
}

func TestHashPathIsIndependentOfFilesystemCreationOrder(t *testing.T) {
	a := t.TempDir()
	os.WriteFile(filepath.Join(a, "b.txt"), []byte("b"), 0o644)
	os.WriteFile(filepath.Join(a, "a.txt"), []byte("a"), 0o644)

	b := t.TempDir()
	os.WriteFile(filepath.Join(b, "a.txt"), []byte("a"), 0o644)
	os.WriteFile(filepath.Join(b, "b.txt"), []byte("b"), 0o644)

	ha, err := HashPath(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := HashPath(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Fatalf("expected creation-order-independent hash, got %x != %x", ha, hb)
	}
}

func TestExtractNarRejectsPathTraversal(t *testing.T) {
	var buf bytes.Buffer
	nw := NewNarWriter(&buf)
	nw.writeString(narMagic)
	nw.writeString("(")
	nw.writeString("type")
	nw.writeString("directory")
	nw.writeString("entry")
	nw.writeString("(")
	nw.writeString("name")
	nw.writeString("../escape")
	nw.writeString("node")
	nw.writeString("(")
	nw.writeString("type")
	nw.writeString("regular")
	nw.writeString("contents")
	nw.writeBytes([]byte("x"))
	nw.writeString(")")
	nw.writeString(")")
	nw.writeString(")")
	nw.w.Flush()

	dest := t.TempDir()
	if err := ExtractNar(buf.Bytes(), filepath.Join(dest, "out")); err == nil {
		t.Fatalf("expected path traversal rejection")
	}
}
