package store

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestPathStringParsePathRoundTrip(t *testing.T) {
	s := openTestStore(t)
	p, err := s.AddFile([]byte("hello"), "greeting")
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	got, ok := ParsePath(p.String())
	if !ok {
		t.Fatalf("ParsePath(%q) failed", p.String())
	}
	if got != p {
		t.Fatalf("round trip mismatch: %+v != %+v", got, p)
	}
}

func TestAddFileIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	a, err := s.AddFile([]byte("content"), "x")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.AddFile([]byte("content"), "x")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("expected identical content to produce identical path")
	}
}

func TestAddFileContentIsReadOnlyMode(t *testing.T) {
	s := openTestStore(t)
	p, err := s.AddFile([]byte("content"), "x")
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(s.ToFSPath(p))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o222 != 0 {
		t.Fatalf("expected store path to be placed without write permission, got mode %v", info.Mode())
	}
}

func TestAddDirectoryHashesByContentNotByPath(t *testing.T) {
	s := openTestStore(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := s.AddDirectory(dir, "pkg")
	if err != nil {
		t.Fatalf("AddDirectory: %v", err)
	}
	if !s.Exists(p) {
		t.Fatalf("expected store path to exist after AddDirectory")
	}
	got, err := os.ReadFile(filepath.Join(s.ToFSPath(p), "f.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "data" {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestDeleteRemovesPath(t *testing.T) {
	s := openTestStore(t)
	p, err := s.AddFile([]byte("gone soon"), "x")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(p); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Exists(p) {
		t.Fatalf("expected path to be gone after Delete")
	}
}

func TestListPathsReturnsEveryAddedPath(t *testing.T) {
	s := openTestStore(t)
	a, _ := s.AddFile([]byte("one"), "a")
	b, _ := s.AddFile([]byte("two"), "b")

	paths, err := s.ListPaths()
	if err != nil {
		t.Fatal(err)
	}
	found := map[string]bool{}
	for _, p := range paths {
		found[p.String()] = true
	}
	if !found[a.String()] || !found[b.String()] {
		t.Fatalf("expected both added paths in ListPaths, got %v", paths)
	}
}

func TestGCCollectsUnreachablePaths(t *testing.T) {
	s := openTestStore(t)
	rooted, err := s.AddFile([]byte("keep me"), "kept")
	if err != nil {
		t.Fatal(err)
	}
	orphan, err := s.AddFile([]byte("delete me"), "orphan")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddRoot("manual", rooted); err != nil {
		t.Fatalf("AddRoot: %v", err)
	}

	gc := NewGC(s, nil)
	res, err := gc.Collect(false)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !s.Exists(rooted) {
		t.Fatalf("expected rooted path to survive GC")
	}
	if s.Exists(orphan) {
		t.Fatalf("expected orphan path to be collected")
	}
	foundOrphan := false
	for _, p := range res.Deleted {
		if p == orphan {
			foundOrphan = true
		}
	}
	if !foundOrphan {
		t.Fatalf("expected orphan in GC result, got %v", res.Deleted)
	}
}

func TestGCDryRunDeletesNothing(t *testing.T) {
	s := openTestStore(t)
	orphan, err := s.AddFile([]byte("delete me"), "orphan")
	if err != nil {
		t.Fatal(err)
	}
	gc := NewGC(s, nil)
	if _, err := gc.Collect(true); err != nil {
		t.Fatalf("Collect(dryRun): %v", err)
	}
	if !s.Exists(orphan) {
		t.Fatalf("expected dry run to leave orphan path on disk")
	}
}

type fakeRefs map[string][]Path

func (f fakeRefs) References(p Path) ([]Path, error) { return f[p.String()], nil }

func TestGCFollowsTransitiveReferences(t *testing.T) {
	s := openTestStore(t)
	leaf, err := s.AddFile([]byte("leaf"), "leaf")
	if err != nil {
		t.Fatal(err)
	}
	mid, err := s.AddFile([]byte("mid"), "mid")
	if err != nil {
		t.Fatal(err)
	}
	root, err := s.AddFile([]byte("root"), "root")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddRoot("entry", root); err != nil {
		t.Fatal(err)
	}

	refs := fakeRefs{
		root.String(): {mid},
		mid.String():  {leaf},
	}
	gc := NewGC(s, refs)
	if _, err := gc.Collect(false); err != nil {
		t.Fatal(err)
	}
	if !s.Exists(leaf) {
		t.Fatalf("expected leaf to survive GC via transitive reference")
	}
}

func TestGenerationSwitchAndRollback(t *testing.T) {
	s := openTestStore(t)
	g1root, _ := s.AddFile([]byte("gen1"), "profile")
	g2root, _ := s.AddFile([]byte("gen2"), "profile")

	g1, err := s.NewGeneration(g1root)
	if err != nil {
		t.Fatalf("NewGeneration: %v", err)
	}
	g2, err := s.NewGeneration(g2root)
	if err != nil {
		t.Fatalf("NewGeneration: %v", err)
	}
	if g2.Number != g1.Number+1 {
		t.Fatalf("expected sequential generation numbers, got %d then %d", g1.Number, g2.Number)
	}

	cur, ok, err := s.CurrentGeneration()
	if err != nil || !ok {
		t.Fatalf("CurrentGeneration: %v, ok=%v", err, ok)
	}
	if cur.Number != g2.Number {
		t.Fatalf("expected current generation to be the newest, got %d", cur.Number)
	}

	prev, err := s.Rollback()
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if prev.Number != g1.Number {
		t.Fatalf("expected rollback to land on generation %d, got %d", g1.Number, prev.Number)
	}
}

func TestListRootsIncludesLiveGenerations(t *testing.T) {
	s := openTestStore(t)
	root, _ := s.AddFile([]byte("profile"), "profile")
	if _, err := s.NewGeneration(root); err != nil {
		t.Fatal(err)
	}
	roots, err := s.ListRoots()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) == 0 {
		t.Fatalf("expected at least one root from the new generation")
	}
}
