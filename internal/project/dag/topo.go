package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Topo is the result of a topological sort: a flat order in which every
// package comes before the packages it requires, plus batches of mutually
// independent packages, useful for handling several dependencies in
// parallel.
type Topo struct {
	Order   []PackageID   // flat order (present packages only), dependents first
	Batches [][]PackageID // waves of independent packages
	Cyclic  bool
	Cycles  []PackageID // nodes left over in a cycle
}

// ToposortKahn runs Kahn's algorithm over g, batching every round's
// zero-in-degree packages together so a caller can schedule a whole batch
// concurrently before moving to the next.
func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]PackageID, 0, nodeCount),
		Batches: make([][]PackageID, 0),
	}

	active := 0
	for i := range nodeCount {
		if g.Present[i] {
			active++
		}
	}

	current := make([]PackageID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		if indeg[i] == 0 {
			id, err := safecast.Conv[PackageID](i)
			if err != nil {
				panic(fmt.Errorf("package id overflow: %w", err))
			}
			current = append(current, id)
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]PackageID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]PackageID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if !g.Present[i] {
				continue
			}
			if indeg[i] > 0 {
				id, err := safecast.Conv[PackageID](i)
				if err != nil {
					panic(fmt.Errorf("package id overflow: %w", err))
				}
				topo.Cycles = append(topo.Cycles, id)
			}
		}
		slices.Sort(topo.Cycles)
	}

	return topo
}
