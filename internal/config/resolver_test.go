package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"neve/internal/project"
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

func localDependency(t *testing.T, content string) project.DependencySpec {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return project.DependencySpec{Source: "local", Path: path}
}

func TestResolveReportsMissingDependency(t *testing.T) {
	m := &project.Manifest{
		Package: project.PackageSpec{Name: "demo"},
		Dependencies: map[string]project.DependencySpec{
			"left": {Source: "local", Requires: []string{"right"}},
		},
	}
	plan := Resolve(m)
	if !plan.Bag.HasErrors() {
		t.Fatalf("expected a missing-dependency diagnostic")
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	m := &project.Manifest{
		Package: project.PackageSpec{Name: "demo"},
		Dependencies: map[string]project.DependencySpec{
			"left":  {Source: "local", Requires: []string{"right"}},
			"right": {Source: "local", Requires: []string{"left"}},
		},
	}
	plan := Resolve(m)
	if !plan.Topo.Cyclic {
		t.Fatalf("expected cyclic topo sort")
	}
}

func TestBuildAssemblesGenerationFromFetchedDependencies(t *testing.T) {
	s := openTestStore(t)
	r := NewResolver(s)

	m := &project.Manifest{
		Package: project.PackageSpec{Name: "demo"},
		Dependencies: map[string]project.DependencySpec{
			"left":  localDependency(t, "left content"),
			"right": localDependency(t, "right content"),
		},
	}

	gen, bag, err := r.Build(context.Background(), m)
	if err != nil {
		t.Fatalf("build: %v (%v)", err, bag.Items())
	}
	if gen.Number != 1 {
		t.Fatalf("generation number = %d, want 1", gen.Number)
	}
	if !s.Exists(gen.Root) {
		t.Fatalf("generation root %s not present in store", gen.Root)
	}

	profileDir := s.ToFSPath(gen.Root)
	for _, name := range []string{"left", "right"} {
		if _, err := os.Stat(filepath.Join(profileDir, name)); err != nil {
			t.Fatalf("expected profile entry %q: %v", name, err)
		}
	}
}

func TestBuildFailsWhenDependencyFetchErrors(t *testing.T) {
	s := openTestStore(t)
	r := NewResolver(s)

	m := &project.Manifest{
		Package: project.PackageSpec{Name: "demo"},
		Dependencies: map[string]project.DependencySpec{
			"missing": {Source: "local", Path: filepath.Join(t.TempDir(), "nonexistent")},
		},
	}

	if _, _, err := r.Build(context.Background(), m); err == nil {
		t.Fatalf("expected an error for an unfetchable dependency")
	}
}

func TestSwitchAndRollbackDelegateToStore(t *testing.T) {
	s := openTestStore(t)
	r := NewResolver(s)

	m1 := &project.Manifest{
		Package:      project.PackageSpec{Name: "demo"},
		Dependencies: map[string]project.DependencySpec{"left": localDependency(t, "v1")},
	}
	m2 := &project.Manifest{
		Package:      project.PackageSpec{Name: "demo"},
		Dependencies: map[string]project.DependencySpec{"left": localDependency(t, "v2")},
	}

	if _, _, err := r.Build(context.Background(), m1); err != nil {
		t.Fatalf("build m1: %v", err)
	}
	if _, _, err := r.Build(context.Background(), m2); err != nil {
		t.Fatalf("build m2: %v", err)
	}

	gens, err := r.List()
	if err != nil || len(gens) != 2 {
		t.Fatalf("list: %v, %d generations", err, len(gens))
	}

	// Building m2 left current pointed at generation 2; roll back to 1.
	back, err := r.Rollback()
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if back.Number != 1 {
		t.Fatalf("rollback landed on generation %d, want 1", back.Number)
	}

	if err := r.Switch(2); err != nil {
		t.Fatalf("switch: %v", err)
	}
	cur, ok, err := r.Current()
	if err != nil || !ok || cur.Number != 2 {
		t.Fatalf("current after switch = %+v, ok=%v, err=%v", cur, ok, err)
	}
}
