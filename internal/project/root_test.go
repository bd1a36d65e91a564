package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindManifestWalksUpDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ManifestFileName), []byte("[package]\nname=\"demo\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("find manifest: ok=%v err=%v", ok, err)
	}
	want, _ := filepath.Abs(filepath.Join(root, ManifestFileName))
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
}

func TestFindManifestReportsNotFound(t *testing.T) {
	_, ok, err := FindManifest(t.TempDir())
	if err != nil || ok {
		t.Fatalf("expected ok=false, err=nil; got ok=%v err=%v", ok, err)
	}
}

func TestFindProjectRootReturnsContainingDir(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ManifestFileName), []byte("[package]\nname=\"demo\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, ok, err := FindProjectRoot(root)
	if err != nil || !ok {
		t.Fatalf("find project root: ok=%v err=%v", ok, err)
	}
	want, _ := filepath.Abs(root)
	if found != want {
		t.Fatalf("root = %q, want %q", found, want)
	}
}
