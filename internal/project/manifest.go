// Package project reads a neve.toml project manifest, resolves its
// declared dependencies into an install order, and assembles the
// resulting store paths into a generation the store can switch between.
package project

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"neve/internal/deriv"
	"neve/internal/fetcher"
)

// DependencySpec is one entry of a manifest's [dependencies] table: a
// fetchable source plus, optionally, the names of other declared
// dependencies it itself requires to be built first.
type DependencySpec struct {
	Source string `toml:"source"` // "url", "git", or "local"
	URL    string `toml:"url"`
	Rev    string `toml:"rev"`
	Path   string `toml:"path"`
	Unpack bool   `toml:"unpack"`

	HashAlgorithm string `toml:"hash_algorithm"`
	Hash          string `toml:"hash"`

	Requires []string `toml:"requires"`
}

// PackageSpec is a manifest's [package] table.
type PackageSpec struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	System  string `toml:"system"`
}

// Manifest is a parsed neve.toml.
type Manifest struct {
	Package      PackageSpec               `toml:"package"`
	Dependencies map[string]DependencySpec `toml:"dependencies"`

	Path string // absolute path to the neve.toml this was loaded from
	Dir  string // its containing directory
}

// LoadManifest parses the neve.toml at path.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: missing [package]", path)
	}
	if strings.TrimSpace(m.Package.Name) == "" {
		return nil, fmt.Errorf("%s: [package].name must not be empty", path)
	}
	if m.Dependencies == nil {
		m.Dependencies = map[string]DependencySpec{}
	}
	m.Path = path
	m.Dir = filepath.Dir(path)
	return &m, nil
}

// ToSource converts a dependency declaration into the fetcher's Source,
// the form the fetcher and builder actually consume.
func (d DependencySpec) ToSource(name string) (fetcher.Source, error) {
	src := fetcher.Source{Name: name, URL: d.URL, Rev: d.Rev, Path: d.Path, Unpack: d.Unpack}
	switch d.Source {
	case "url", "":
		src.Kind = fetcher.KindURL
	case "git":
		src.Kind = fetcher.KindGit
	case "local":
		src.Kind = fetcher.KindLocal
	default:
		return fetcher.Source{}, fmt.Errorf("dependency %q: unsupported source %q", name, d.Source)
	}
	if d.Hash != "" {
		switch d.HashAlgorithm {
		case "sha256":
			src.HashAlgorithm = deriv.HashSHA256
		case "blake3", "":
			src.HashAlgorithm = deriv.HashBlake3
		default:
			return fetcher.Source{}, fmt.Errorf("dependency %q: unsupported hash algorithm %q", name, d.HashAlgorithm)
		}
		hash, ok := deriv.DecodeBase32(d.Hash)
		if !ok {
			return fetcher.Source{}, fmt.Errorf("dependency %q: invalid hash %q", name, d.Hash)
		}
		src.ExpectedHash = hash
	}
	return src, nil
}

// Names returns the manifest's dependency names in sorted order, for
// output that must not depend on Go's random map iteration.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
