package project

import "neve/internal/source"

// DependencyRef names one dependency a package declares, carried through
// to graph construction so missing/cyclic/duplicate diagnostics can point
// at the declaration that introduced it.
type DependencyRef struct {
	Name string
	Span source.Span
}

// PackageMeta is one node of a dependency graph: a package's own name,
// plus the dependencies it declares needing to be resolved before it.
type PackageMeta struct {
	Name     string
	Span     source.Span
	Requires []DependencyRef
}

// ManifestPackages converts a manifest into dependency-graph nodes: the
// project's own package (requiring every declared dependency), plus one
// node per dependency, threading each dependency's own "requires" list so
// a dependency that itself needs another declared dependency installs in
// the right order.
func ManifestPackages(m *Manifest) []PackageMeta {
	names := m.Names()
	root := PackageMeta{Name: m.Package.Name}
	for _, name := range names {
		root.Requires = append(root.Requires, DependencyRef{Name: name})
	}

	metas := make([]PackageMeta, 0, len(names)+1)
	metas = append(metas, root)
	for _, name := range names {
		spec := m.Dependencies[name]
		node := PackageMeta{Name: name}
		for _, req := range spec.Requires {
			node.Requires = append(node.Requires, DependencyRef{Name: req})
		}
		metas = append(metas, node)
	}
	return metas
}
