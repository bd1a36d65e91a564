package project

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
)

// LockfileFileName sits alongside neve.toml, recording the exact source
// each dependency resolved to the last time the project was built.
const LockfileFileName = "neve.lock"

// LockedDependency is one resolved dependency's pinned identity.
type LockedDependency struct {
	Source string `toml:"source"`
	URL    string `toml:"url"`
	Rev    string `toml:"rev"`
	Hash   string `toml:"hash"`
}

// Lockfile is a parsed neve.lock.
type Lockfile struct {
	Dependencies map[string]LockedDependency `toml:"dependencies"`
}

func LoadLockfile(path string) (*Lockfile, error) {
	var lf Lockfile
	if _, err := toml.DecodeFile(path, &lf); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if lf.Dependencies == nil {
		lf.Dependencies = map[string]LockedDependency{}
	}
	return &lf, nil
}

// SaveLockfile writes lf to path in a deterministic key order.
func SaveLockfile(path string, lf *Lockfile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(lf)
}

// LockFromManifest pins every dependency m declares with a hash to its
// current source, for writing a fresh neve.lock after a successful build.
func LockFromManifest(m *Manifest) *Lockfile {
	lf := &Lockfile{Dependencies: make(map[string]LockedDependency, len(m.Dependencies))}
	for name, spec := range m.Dependencies {
		lf.Dependencies[name] = LockedDependency{Source: spec.Source, URL: spec.URL, Rev: spec.Rev, Hash: spec.Hash}
	}
	return lf
}

// OutOfDate reports whether m declares a dependency set or pinned source
// that diverges from what lf last recorded — the signal behind
// ProjLockfileOutOfDate.
func (lf *Lockfile) OutOfDate(m *Manifest) bool {
	if len(lf.Dependencies) != len(m.Dependencies) {
		return true
	}
	for name, spec := range m.Dependencies {
		locked, ok := lf.Dependencies[name]
		if !ok {
			return true
		}
		if locked.Source != spec.Source || locked.URL != spec.URL || locked.Rev != spec.Rev {
			return true
		}
		if spec.Hash != "" && locked.Hash != spec.Hash {
			return true
		}
	}
	return false
}

// SortedNames returns lf's dependency names in sorted order.
func (lf *Lockfile) SortedNames() []string {
	names := make([]string, 0, len(lf.Dependencies))
	for name := range lf.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
