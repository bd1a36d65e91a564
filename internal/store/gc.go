package store

import (
	"errors"
	"os"
	"path/filepath"
)

// AddRoot registers name as a GC root pointing at p: a symlink under
// var/gcroots/<id>.
func (s *Store) AddRoot(name string, p Path) error {
	rootsDir := filepath.Join(s.root, "var", "gcroots")
	if err := os.MkdirAll(rootsDir, 0o755); err != nil {
		return err
	}
	link := filepath.Join(rootsDir, name)
	_ = os.Remove(link)
	return os.Symlink(s.ToFSPath(p), link)
}

// RemoveRoot deletes a previously added GC root.
func (s *Store) RemoveRoot(name string) error {
	link := filepath.Join(s.root, "var", "gcroots", name)
	if err := os.Remove(link); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Root pairs a GC root's user-given name with the Path it points at.
type Root struct {
	Name string
	Path Path
}

// ListRoots enumerates every registered GC root, including one synthetic
// root per live generation (GenerationsRoots), since a system-configuration
// generation is itself always live.
func (s *Store) ListRoots() ([]Root, error) {
	rootsDir := filepath.Join(s.root, "var", "gcroots")
	entries, err := os.ReadDir(rootsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var roots []Root
	for _, e := range entries {
		target, err := os.Readlink(filepath.Join(rootsDir, e.Name()))
		if err != nil {
			continue
		}
		if p, ok := ParsePath(filepath.Base(target)); ok {
			roots = append(roots, Root{Name: e.Name(), Path: p})
		}
	}
	generations, err := s.ListGenerations()
	if err != nil {
		return nil, err
	}
	for _, g := range generations {
		roots = append(roots, Root{Name: "generation-" + itoa(g.Number), Path: g.Root})
	}
	return roots, nil
}

// ReferenceScanner looks up the other store paths a given path's content
// textually references. DerivationRefs
// supplies the references for a derivation's own recorded inputs; a
// built output's references come from scanning its content for other
// store paths' hash components, which ReferenceScanner abstracts so
// GC doesn't need to know which case it's looking at.
type ReferenceScanner interface {
	References(p Path) ([]Path, error)
}

// GC is a mark-and-sweep garbage collector over one Store.
type GC struct {
	store *Store
	refs  ReferenceScanner
}

func NewGC(s *Store, refs ReferenceScanner) *GC { return &GC{store: s, refs: refs} }

// Result reports what a collection pass did.
type Result struct {
	Deleted     []Path
	FreedBytes  int64
}

// LivePaths returns every Path transitively reachable from the store's
// current GC roots.
func (g *GC) LivePaths() (map[string]bool, error) {
	roots, err := g.store.ListRoots()
	if err != nil {
		return nil, err
	}
	live := make(map[string]bool)
	for _, r := range roots {
		if err := g.markReachable(r.Path, live); err != nil {
			return nil, err
		}
	}
	return live, nil
}

func (g *GC) markReachable(p Path, live map[string]bool) error {
	key := p.String()
	if live[key] {
		return nil
	}
	if !g.store.Exists(p) {
		return nil
	}
	live[key] = true
	if g.refs == nil {
		return nil
	}
	refs, err := g.refs.References(p)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := g.markReachable(ref, live); err != nil {
			return err
		}
	}
	return nil
}

// Collect deletes every path unreachable from any GC root and reports
// what it freed. DryRun set to true performs every step except the
// actual deletion, for `store gc --dry-run`.
func (g *GC) Collect(dryRun bool) (Result, error) {
	live, err := g.LivePaths()
	if err != nil {
		return Result{}, err
	}
	all, err := g.store.ListPaths()
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, p := range all {
		if live[p.String()] {
			continue
		}
		size, _ := dirSize(g.store.ToFSPath(p))
		res.Deleted = append(res.Deleted, p)
		res.FreedBytes += size
		if !dryRun {
			if err := g.store.Delete(p); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
