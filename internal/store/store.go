package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"neve/internal/deriv"
)

// Path identifies one entry in the store: a content hash plus a
// human-readable label, together spelling the on-disk directory name
// {hash}-{name} every store path is named with.
type Path struct {
	Hash deriv.Digest
	Name string
}

func (p Path) String() string { return fmt.Sprintf("%s-%s", deriv.EncodeBase32(p.Hash), p.Name) }

// ParsePath recovers a Path from a {hash}-{name} label, the inverse of
// String, used when listing a store root's directory entries.
func ParsePath(label string) (Path, bool) {
	idx := strings.IndexByte(label, '-')
	if idx < 0 {
		return Path{}, false
	}
	digest, ok := deriv.DecodeBase32(label[:idx])
	if !ok {
		return Path{}, false
	}
	return Path{Hash: digest, Name: label[idx+1:]}, true
}

// Store is the content-addressed filesystem rooted at Root. Every
// directory under Root is named by ParsePath/String and, once placed, is
// treated as immutable, the same assumption any hash-keyed disk cache
// makes of its payload files.
type Store struct {
	mu   sync.RWMutex
	root string
}

// Open ensures root exists and returns a Store rooted there. root
// defaults to "/neve/store", but callers (the CLI's
// NEVE_STORE_DIR) are expected to override it.
func Open(root string) (*Store, error) {
	if root == "" {
		root = "/neve/store"
	}
	if err := os.MkdirAll(filepath.Join(root, "store"), 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "var", "gcroots"), 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "var", "generations"), 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "var", "log"), 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "var", "locks"), 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "var", "cache"), 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// ToFSPath maps a Path onto its absolute location under the store root.
func (s *Store) ToFSPath(p Path) string { return filepath.Join(s.root, "store", p.String()) }

// Exists reports whether p is already present.
func (s *Store) Exists(p Path) bool {
	_, err := os.Stat(s.ToFSPath(p))
	return err == nil
}

// AddFile places bytes under {hash}-{name} and returns the resulting
// Path. If the path already exists, its content is assumed immutable and
// the call is a no-op (idempotent, same tolerance as a Put over an
// existing key in a content-addressed cache).
func (s *Store) AddFile(content []byte, name string) (Path, error) {
	p := Path{Hash: deriv.HashBytes(content), Name: name}
	s.mu.Lock()
	defer s.mu.Unlock()
	dest := s.ToFSPath(p)
	if _, err := os.Stat(dest); err == nil {
		return p, nil
	}
	if err := writeAtomic(dest, content, 0o444); err != nil {
		return Path{}, fmt.Errorf("store: add file %s: %w", name, err)
	}
	return p, nil
}

// AddDirectory serializes dir to NAR form, hashes the NAR, and places the
// original tree (not the archive) under the resulting hash.
func (s *Store) AddDirectory(dir, name string) (Path, error) {
	hash, err := HashPath(dir)
	if err != nil {
		return Path{}, fmt.Errorf("store: hash directory %s: %w", dir, err)
	}
	p := Path{Hash: hash, Name: name}
	s.mu.Lock()
	defer s.mu.Unlock()
	dest := s.ToFSPath(p)
	if _, err := os.Stat(dest); err == nil {
		return p, nil
	}
	if err := copyTree(dir, dest); err != nil {
		return Path{}, fmt.Errorf("store: add directory %s: %w", name, err)
	}
	if err := makeReadOnlyRecursive(dest); err != nil {
		return Path{}, fmt.Errorf("store: add directory %s: %w", name, err)
	}
	return p, nil
}

// Delete removes p from disk, used by GC. Paths are stored read-only, so
// permissions are relaxed first.
func (s *Store) Delete(p Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fsPath := s.ToFSPath(p)
	if _, err := os.Stat(fsPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := makeWritableRecursive(fsPath); err != nil {
		return err
	}
	return os.RemoveAll(fsPath)
}

// ListPaths enumerates every Path currently on disk.
func (s *Store) ListPaths() ([]Path, error) {
	dir := filepath.Join(s.root, "store")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	paths := make([]Path, 0, len(entries))
	for _, e := range entries {
		if p, ok := ParsePath(e.Name()); ok {
			paths = append(paths, p)
		}
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].String() < paths[j].String() })
	return paths, nil
}

// Size returns the total on-disk size of the store's content area.
func (s *Store) Size() (int64, error) { return dirSize(filepath.Join(s.root, "store")) }

func dirSize(path string) (int64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		sz, err := dirSize(filepath.Join(path, e.Name()))
		if err != nil {
			return 0, err
		}
		total += sz
	}
	return total, nil
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case info.IsDir():
			return os.MkdirAll(target, 0o755)
		default:
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			return os.WriteFile(target, content, info.Mode().Perm())
		}
	})
}

func makeReadOnlyRecursive(path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		mode := os.FileMode(0o444)
		if info.IsDir() {
			mode = 0o555
		}
		return os.Chmod(p, mode)
	})
}

func makeWritableRecursive(path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		mode := os.FileMode(0o644)
		if info.IsDir() {
			mode = 0o755
		}
		return os.Chmod(p, mode)
	})
}

// writeAtomic writes content to a temp file in dest's directory and
// renames it into place: write to a sibling temp file, then os.Rename,
// for crash-safe cache writes.
func writeAtomic(dest string, content []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return err
	}
	return os.Rename(tmpName, dest)
}
