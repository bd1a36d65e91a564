package project

import (
	"path/filepath"
	"testing"
)

func TestLockFromManifestRoundTrips(t *testing.T) {
	m := &Manifest{
		Package: PackageSpec{Name: "demo"},
		Dependencies: map[string]DependencySpec{
			"left": {Source: "git", URL: "https://example.invalid/left.git", Rev: "v1", Hash: "abc"},
		},
	}
	lf := LockFromManifest(m)

	dir := t.TempDir()
	path := filepath.Join(dir, LockfileFileName)
	if err := SaveLockfile(path, lf); err != nil {
		t.Fatalf("save lockfile: %v", err)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("load lockfile: %v", err)
	}
	if loaded.Dependencies["left"].Hash != "abc" {
		t.Fatalf("loaded lockfile = %+v", loaded.Dependencies)
	}
}

func TestLockfileOutOfDateDetectsChangedHash(t *testing.T) {
	m := &Manifest{
		Package: PackageSpec{Name: "demo"},
		Dependencies: map[string]DependencySpec{
			"left": {Source: "git", URL: "https://example.invalid/left.git", Hash: "new-hash"},
		},
	}
	lf := &Lockfile{Dependencies: map[string]LockedDependency{
		"left": {Source: "git", URL: "https://example.invalid/left.git", Hash: "old-hash"},
	}}
	if !lf.OutOfDate(m) {
		t.Fatalf("expected lockfile to be out of date after a hash change")
	}
}

func TestLockfileOutOfDateIgnoresMatchingState(t *testing.T) {
	m := &Manifest{
		Package: PackageSpec{Name: "demo"},
		Dependencies: map[string]DependencySpec{
			"left": {Source: "git", URL: "https://example.invalid/left.git", Rev: "v1"},
		},
	}
	lf := LockFromManifest(m)
	if lf.OutOfDate(m) {
		t.Fatalf("freshly locked manifest should not be out of date")
	}
}

func TestLockfileOutOfDateDetectsAddedDependency(t *testing.T) {
	lf := &Lockfile{Dependencies: map[string]LockedDependency{}}
	m := &Manifest{
		Package:      PackageSpec{Name: "demo"},
		Dependencies: map[string]DependencySpec{"left": {Source: "local", Path: "."}},
	}
	if !lf.OutOfDate(m) {
		t.Fatalf("expected an added dependency to trigger out-of-date")
	}
}
