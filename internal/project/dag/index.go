package dag

import (
	"sort"

	"neve/internal/project"
)

// PackageID is a dense index assigned to every package name that appears
// anywhere in a dependency graph, whether declared or only referenced.
type PackageID uint32

type PackageIndex struct {
	NameToID map[string]PackageID
	IDToName []string
}

// BuildIndex collects every package name mentioned by metas — each
// package's own name and every name it requires — and assigns dense IDs
// in sorted order, so the resulting index is deterministic regardless of
// map iteration order upstream.
func BuildIndex(metas []project.PackageMeta) PackageIndex {
	uniq := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		if meta.Name != "" {
			uniq[meta.Name] = struct{}{}
		}
		for _, dep := range meta.Requires {
			if dep.Name == "" {
				continue
			}
			uniq[dep.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]PackageID, len(names))
	for i, name := range names {
		nameToID[name] = PackageID(i)
	}

	return PackageIndex{
		NameToID: nameToID,
		IDToName: names,
	}
}
