package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "neve.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifestParsesPackageAndDependencies(t *testing.T) {
	path := writeManifest(t, `
[package]
name = "demo"
version = "1.0.0"

[dependencies.left]
source = "git"
url = "https://example.invalid/left.git"
rev = "v1"

[dependencies.right]
source = "local"
path = "../right"
`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if m.Package.Name != "demo" || m.Package.Version != "1.0.0" {
		t.Fatalf("unexpected package: %+v", m.Package)
	}
	if len(m.Dependencies) != 2 {
		t.Fatalf("dependencies = %d, want 2", len(m.Dependencies))
	}
	if m.Dependencies["left"].URL != "https://example.invalid/left.git" {
		t.Fatalf("left dependency: %+v", m.Dependencies["left"])
	}
}

func TestLoadManifestRejectsMissingPackageName(t *testing.T) {
	path := writeManifest(t, `
[package]
version = "1.0.0"
`)
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("expected an error for an empty package name")
	}
}

func TestDependencySpecToSourceRejectsUnsupportedSource(t *testing.T) {
	spec := DependencySpec{Source: "svn"}
	if _, err := spec.ToSource("dep"); err == nil {
		t.Fatalf("expected an error for an unsupported source kind")
	}
}

func TestManifestPackagesThreadsRequires(t *testing.T) {
	m := &Manifest{
		Package: PackageSpec{Name: "demo"},
		Dependencies: map[string]DependencySpec{
			"a": {Requires: []string{"b"}},
			"b": {},
		},
	}
	metas := ManifestPackages(m)
	if len(metas) != 3 {
		t.Fatalf("metas = %d, want 3 (root + 2 deps)", len(metas))
	}
	if metas[0].Name != "demo" || len(metas[0].Requires) != 2 {
		t.Fatalf("root meta = %+v", metas[0])
	}
}
