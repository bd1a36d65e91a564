package dag

import (
	"fmt"
	"slices"
	"strings"

	"neve/internal/diag"
	"neve/internal/project"
	"neve/internal/source"
)

// Graph is a dependency graph over PackageIDs: Edges[from] lists the
// packages from depends on.
type Graph struct {
	Edges   [][]PackageID // Edges[from] = []to
	Indeg   []int         // in-degree, counting only present packages
	Present []bool        // whether a package was actually declared, not just referenced
}

// PackageNode is one package fed into BuildGraph, carrying the reporter
// its own diagnostics should go to.
type PackageNode struct {
	Meta     project.PackageMeta
	Reporter diag.Reporter
	Broken   bool
	FirstErr *diag.Diagnostic
}

// PackageSlot is BuildGraph's per-ID bookkeeping: whether a declared
// package claimed this slot, and its resolved metadata if so.
type PackageSlot struct {
	Meta     project.PackageMeta
	Reporter diag.Reporter
	Present  bool
	Broken   bool
	FirstErr *diag.Diagnostic
}

// BuildGraph assigns each node to its slot in idx, reporting a duplicate
// declaration for any name claimed twice, then wires edges from each
// present package's declared dependencies, reporting a missing or
// self-referential dependency in place of an edge that can't be built.
func BuildGraph(idx PackageIndex, nodes []PackageNode) (Graph, []PackageSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]PackageID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]PackageSlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Meta.Name = name
	}

	for _, node := range nodes {
		meta := node.Meta
		if meta.Name == "" {
			continue
		}
		id, ok := idx.NameToID[meta.Name]
		if !ok {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			if node.Reporter != nil {
				notes := make([]diag.Note, 0, 1)
				if slot.Meta.Span != (source.Span{}) {
					notes = append(notes, diag.Note{
						Span: slot.Meta.Span,
						Msg:  fmt.Sprintf("previous declaration of %q", slot.Meta.Name),
					})
				}
				node.Reporter.Report(
					diag.ProjDuplicateDependency,
					diag.SevError,
					meta.Span,
					fmt.Sprintf("duplicate dependency %q", meta.Name),
					notes,
					nil,
				)
			}
			continue
		}
		slot.Meta = meta
		slot.Reporter = node.Reporter
		slot.Present = true
		slot.Broken = node.Broken
		slot.FirstErr = node.FirstErr
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present || len(slot.Meta.Requires) == 0 {
			continue
		}
		seen := make(map[PackageID]struct{}, len(slot.Meta.Requires))
		for _, dep := range slot.Meta.Requires {
			if dep.Name == "" {
				continue
			}
			toID, ok := idx.NameToID[dep.Name]
			if !ok {
				if slot.Reporter != nil {
					slot.Reporter.Report(
						diag.ProjMissingDependency,
						diag.SevError,
						dep.Span,
						fmt.Sprintf("package %q requires unknown dependency %q", slot.Meta.Name, dep.Name),
						nil,
						nil,
					)
				}
				continue
			}
			if PackageID(from) == toID {
				if slot.Reporter != nil {
					slot.Reporter.Report(
						diag.ProjSelfDependency,
						diag.SevError,
						dep.Span,
						fmt.Sprintf("package %q depends on itself", slot.Meta.Name),
						nil,
						nil,
					)
				}
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}

			g.Edges[from] = append(g.Edges[from], toID)
			if g.Present[int(toID)] {
				g.Indeg[int(toID)]++
			} else if slot.Reporter != nil {
				slot.Reporter.Report(
					diag.ProjMissingDependency,
					diag.SevError,
					dep.Span,
					fmt.Sprintf("package %q requires missing dependency %q", slot.Meta.Name, idx.IDToName[int(toID)]),
					nil,
					nil,
				)
			}
		}
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}

	return g, slots
}

// ReportCycles reports a dependency-cycle diagnostic against every
// package participating in a cycle detected by ToposortKahn.
func ReportCycles(idx PackageIndex, slots []PackageSlot, topo Topo) {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	summary := strings.Join(names, " -> ")

	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present || slot.Reporter == nil {
			continue
		}
		msg := fmt.Sprintf("package %q participates in a dependency cycle: %s", slot.Meta.Name, summary)
		slot.Reporter.Report(diag.ProjDependencyCycle, diag.SevError, slot.Meta.Span, msg, nil, nil)
	}
}

// ReportBrokenDeps reports, for every present package that requires a
// package marked Broken, that its dependency failed to resolve — letting
// a single fetch/build failure propagate as a clear diagnostic to every
// dependent rather than a confusing downstream error.
func ReportBrokenDeps(idx PackageIndex, slots []PackageSlot) {
	for i := range slots {
		slotFrom := &slots[i]
		if !slotFrom.Present || slotFrom.Reporter == nil || len(slotFrom.Meta.Requires) == 0 {
			continue
		}
		emitted := make(map[string]struct{}, len(slotFrom.Meta.Requires))
		for _, dep := range slotFrom.Meta.Requires {
			toID, ok := idx.NameToID[dep.Name]
			if !ok {
				continue
			}
			depSlot := slots[int(toID)]
			if !depSlot.Broken {
				continue
			}
			key := dep.Name + "|" + dep.Span.String()
			if _, seen := emitted[key]; seen {
				continue
			}
			emitted[key] = struct{}{}

			notes := []diag.Note(nil)
			if depSlot.FirstErr != nil {
				notes = append(notes, diag.Note{
					Span: depSlot.FirstErr.Primary,
					Msg:  fmt.Sprintf("first error in dependency: %s", depSlot.FirstErr.Message),
				})
			}

			msg := fmt.Sprintf("dependency %q has errors", dep.Name)
			slotFrom.Reporter.Report(diag.ProjDependencyFailed, diag.SevError, dep.Span, msg, notes, nil)
		}
	}
}
