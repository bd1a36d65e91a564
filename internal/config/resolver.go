// Package config assembles a project's declared dependencies into a
// store generation, and wires the thin config build/switch/rollback/list
// CLI commands to the store's own generation bookkeeping.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"neve/internal/diag"
	"neve/internal/fetcher"
	"neve/internal/project"
	"neve/internal/project/dag"
	"neve/internal/store"
)

// Resolver turns a manifest's declared dependencies into a store
// generation: it fetches each dependency, reports graph errors
// (duplicate, missing, cyclic, or failed dependencies) through a Bag, and
// assembles the survivors into a profile directory the store can point a
// new generation at.
type Resolver struct {
	store   *store.Store
	fetcher *fetcher.Fetcher
}

func NewResolver(s *store.Store) *Resolver {
	return &Resolver{store: s, fetcher: fetcher.New(s)}
}

// Plan is a manifest's dependency graph, resolved into an install order.
type Plan struct {
	Index    dag.PackageIndex
	Graph    dag.Graph
	Topo     *dag.Topo
	Slots    []dag.PackageSlot
	Bag      *diag.Bag
	RootName string
}

// Resolve builds m's dependency graph and topologically sorts it,
// reporting duplicate, missing, and cyclic dependency diagnostics into
// the returned Plan's Bag without fetching anything yet.
func Resolve(m *project.Manifest) *Plan {
	metas := project.ManifestPackages(m)
	idx := dag.BuildIndex(metas)
	bag := diag.NewBag(1000)
	reporter := &diag.BagReporter{Bag: bag}

	nodes := make([]dag.PackageNode, len(metas))
	for i, meta := range metas {
		nodes[i] = dag.PackageNode{Meta: meta, Reporter: reporter}
	}

	graph, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(graph)
	dag.ReportCycles(idx, slots, *topo)

	return &Plan{Index: idx, Graph: graph, Topo: topo, Slots: slots, Bag: bag, RootName: m.Package.Name}
}

// fetchOrder returns the plan's topological order with the manifest's own
// root package filtered out — the root requires every dependency but is
// never itself fetched.
func (p *Plan) fetchOrder() []dag.PackageID {
	rootID, ok := p.Index.NameToID[p.RootName]
	order := make([]dag.PackageID, 0, len(p.Topo.Order))
	for _, id := range p.Topo.Order {
		if ok && id == rootID {
			continue
		}
		order = append(order, id)
	}
	return order
}

// Build fetches every dependency in m in dependency order, and on success
// assembles a new store generation whose profile directory symlinks each
// dependency's name to its fetched store path. A dependency that fails to
// fetch is marked broken so every package that requires it (transitively)
// gets a ProjDependencyFailed diagnostic instead of a confusing build
// error; Build still returns an error in that case and no generation is
// recorded.
func (r *Resolver) Build(ctx context.Context, m *project.Manifest) (store.Generation, *diag.Bag, error) {
	plan := Resolve(m)
	if plan.Bag.HasErrors() {
		return store.Generation{}, plan.Bag, fmt.Errorf("config: dependency graph has errors")
	}

	fetched := make(map[string]store.Path, len(m.Dependencies))
	for _, id := range plan.fetchOrder() {
		name := plan.Index.IDToName[int(id)]
		spec, ok := m.Dependencies[name]
		if !ok {
			continue // declared only as a transitive requirement, never defined
		}
		slot := &plan.Slots[int(id)]
		src, err := spec.ToSource(name)
		if err != nil {
			slot.Broken = true
			diag.ReportError(&diag.BagReporter{Bag: plan.Bag}, diag.ProjManifestInvalid, slot.Meta.Span, err.Error()).Emit()
			continue
		}
		p, err := r.fetcher.Fetch(ctx, src)
		if err != nil {
			slot.Broken = true
			diag.ReportError(&diag.BagReporter{Bag: plan.Bag}, diag.ProjDependencyFailed, slot.Meta.Span,
				fmt.Sprintf("fetching dependency %q: %v", name, err)).Emit()
			continue
		}
		fetched[name] = p
	}

	dag.ReportBrokenDeps(plan.Index, plan.Slots)
	if plan.Bag.HasErrors() {
		return store.Generation{}, plan.Bag, fmt.Errorf("config: failed to resolve dependencies")
	}

	profileDir, err := os.MkdirTemp("", "neve-profile-*")
	if err != nil {
		return store.Generation{}, plan.Bag, fmt.Errorf("config: create profile dir: %w", err)
	}
	defer os.RemoveAll(profileDir)

	for name, p := range fetched {
		link := filepath.Join(profileDir, name)
		if err := os.Symlink(r.store.ToFSPath(p), link); err != nil {
			return store.Generation{}, plan.Bag, fmt.Errorf("config: link dependency %q into profile: %w", name, err)
		}
	}

	profilePath, err := r.store.AddDirectory(profileDir, m.Package.Name+"-profile")
	if err != nil {
		return store.Generation{}, plan.Bag, fmt.Errorf("config: register profile: %w", err)
	}

	gen, err := r.store.NewGeneration(profilePath)
	if err != nil {
		return store.Generation{}, plan.Bag, fmt.Errorf("config: record generation: %w", err)
	}
	return gen, plan.Bag, nil
}

// List, Switch, and Rollback are thin pass-throughs to the store's own
// generation bookkeeping, kept here so cmd/neve's `config` subcommands
// only need to depend on this package, not internal/store directly.
func (r *Resolver) List() ([]store.Generation, error) { return r.store.ListGenerations() }

func (r *Resolver) Switch(n int) error { return r.store.Switch(n) }

func (r *Resolver) Rollback() (store.Generation, error) { return r.store.Rollback() }

func (r *Resolver) Current() (store.Generation, bool, error) { return r.store.CurrentGeneration() }
