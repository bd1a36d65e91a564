package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// diskMap is a mutex-guarded map persisted as one msgpack file, the
// shared shape behind this store's three caches: each loads its whole
// map on open and rewrites the whole file on every mutation, which is
// cheap at the sizes a single machine's store reaches and avoids a
// second on-disk format (a WAL, a B-tree file) just for bookkeeping that
// is itself fully reconstructible by rescanning the store.
type diskMap[V any] struct {
	mu      sync.Mutex
	path    string
	entries map[string]V
}

func openDiskMap[V any](path string) (*diskMap[V], error) {
	d := &diskMap[V]{path: path, entries: map[string]V{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	if len(data) == 0 {
		return d, nil
	}
	if err := msgpack.Unmarshal(data, &d.entries); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", path, err)
	}
	return d, nil
}

func (d *diskMap[V]) get(key string) (V, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.entries[key]
	return v, ok
}

func (d *diskMap[V]) put(key string, v V) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[key] = v
	return d.saveLocked()
}

func (d *diskMap[V]) saveLocked() error {
	data, err := msgpack.Marshal(d.entries)
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", d.path, err)
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache %s: %w", d.path, err)
	}
	return os.Rename(tmp, d.path)
}

func (d *diskMap[V]) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (s *Store) cachePath(name string) string {
	return filepath.Join(s.root, "var", "cache", name+".msgpack")
}

// ReferencesCache remembers the result of scanning a store path's content
// for other store paths it references, keyed by the path's own label —
// content under a given store path never changes once built, so a cache
// entry is valid for as long as the path exists and needs no
// invalidation beyond that.
type ReferencesCache struct {
	m *diskMap[[]string]
}

// OpenReferencesCache opens (or creates) the store's on-disk references
// cache.
func (s *Store) OpenReferencesCache() (*ReferencesCache, error) {
	m, err := openDiskMap[[]string](s.cachePath("references"))
	if err != nil {
		return nil, err
	}
	return &ReferencesCache{m: m}, nil
}

// Lookup returns the cached reference labels for p, if known.
func (c *ReferencesCache) Lookup(p Path) ([]string, bool) { return c.m.get(p.String()) }

// Store records p's computed reference labels.
func (c *ReferencesCache) Store(p Path, refLabels []string) error {
	return c.m.put(p.String(), refLabels)
}

// BuildLogEntry is one recorded outcome of realizing a derivation.
type BuildLogEntry struct {
	Name     string
	Success  bool
	Elapsed  time.Duration
	LogTail  string // last portion of the build command's combined output
}

// BuildLogIndex is the store's record of recent build outcomes, keyed by
// derivation hash, so `store info` and diagnostics can report on a build
// without needing to keep its scratch directory around (KeepFailed aside).
type BuildLogIndex struct {
	m *diskMap[BuildLogEntry]
}

func (s *Store) OpenBuildLogIndex() (*BuildLogIndex, error) {
	m, err := openDiskMap[BuildLogEntry](s.cachePath("buildlog"))
	if err != nil {
		return nil, err
	}
	return &BuildLogIndex{m: m}, nil
}

func (l *BuildLogIndex) Record(derivationHash string, entry BuildLogEntry) error {
	return l.m.put(derivationHash, entry)
}

func (l *BuildLogIndex) Lookup(derivationHash string) (BuildLogEntry, bool) {
	return l.m.get(derivationHash)
}

func (l *BuildLogIndex) Len() int { return l.m.len() }

// DerivationMetadata is the small, human-relevant slice of a derivation
// worth keeping indexed by hash after its build directory is gone.
type DerivationMetadata struct {
	Name        string
	OutputNames []string
	System      string
}

// DerivationMetadataCache indexes realized derivations by hash, so
// `store info` can report on what's in the store without re-deriving
// every build from its original source file.
type DerivationMetadataCache struct {
	m *diskMap[DerivationMetadata]
}

func (s *Store) OpenDerivationMetadataCache() (*DerivationMetadataCache, error) {
	m, err := openDiskMap[DerivationMetadata](s.cachePath("derivations"))
	if err != nil {
		return nil, err
	}
	return &DerivationMetadataCache{m: m}, nil
}

func (c *DerivationMetadataCache) Record(derivationHash string, meta DerivationMetadata) error {
	return c.m.put(derivationHash, meta)
}

func (c *DerivationMetadataCache) Lookup(derivationHash string) (DerivationMetadata, bool) {
	return c.m.get(derivationHash)
}

func (c *DerivationMetadataCache) Len() int { return c.m.len() }
