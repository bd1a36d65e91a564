package hir

import (
	"strings"

	"neve/internal/diag"
	"neve/internal/source"
)

// pendingImport is one not-yet-resolved import edge, tagged with the
// module that declared it.
type pendingImport struct {
	module *Module
	edge   ImportEdge
}

// ResolveImports runs phase 2: resolving every module's import edges
// against the other loaded modules' export tables, including `pub import`
// re-exports, which may themselves depend on re-exports from other
// modules. Resolution proceeds by fixed-point iteration (an import is
// resolvable once its target module's relevant export is settled); any
// edge still unresolved once a full pass makes no further progress is
// either an undeclared module, an unresolved name, or part of a re-export
// cycle, and is reported as such.
//
// Call this once, after every module participating in the program has
// been added via AddModule.
func (p *Program) ResolveImports() {
	var pending []pendingImport
	for _, id := range p.order {
		m := p.moduleByID[id]
		for _, edge := range m.Imports {
			pending = append(pending, pendingImport{module: m, edge: edge})
		}
	}

	for {
		var next []pendingImport
		progress := false
		for _, pi := range pending {
			target, ok := p.targetModule(pi.edge)
			if !ok {
				diag.ReportError(p.rep, diag.HirUndeclaredModule, pi.edge.Span,
					"undeclared module '"+p.modulePathText(pi.edge.Path)+"'").Emit()
				progress = true
				continue
			}
			def, ok := target.Exports[pi.edge.Name]
			if !ok {
				// The target may still have pending re-exports of its own;
				// retry in a later round before concluding the name is
				// genuinely absent.
				next = append(next, pi)
				continue
			}
			p.bindImport(pi.module, pi.edge, def)
			progress = true
		}
		pending = next
		if !progress || len(pending) == 0 {
			break
		}
	}

	if len(pending) == 0 {
		return
	}
	p.reportStuckImports(pending)
}

func (p *Program) targetModule(edge ImportEdge) (*Module, bool) {
	path := p.modulePathText(edge.Path)
	m, ok := p.modules[path]
	return m, ok
}

func (p *Program) modulePathText(path []source.Symbol) string {
	parts := make([]string, len(path))
	for i, s := range path {
		parts[i] = p.in.MustLookup(s)
	}
	return strings.Join(parts, ".")
}

func (p *Program) bindImport(m *Module, edge ImportEdge, def DefID) {
	local := edge.LocalName()
	if existing, ok := m.names[local]; ok && existing != def {
		diag.ReportError(p.rep, diag.HirAmbiguousImport, edge.Span,
			"'"+p.in.MustLookup(local)+"' is already bound in this module; use 'as' to rename one of the imports").Emit()
		return
	}
	m.names[local] = def
	if edge.Public {
		m.Exports[local] = def
	}
}

// reportStuckImports classifies every import edge left unresolved after
// the fixed point stabilizes: a cyclic re-export (the edge's target module
// itself has a pending edge that transitively depends back on the edge's
// own module), or a plain unresolved name in an otherwise-settled module.
func (p *Program) reportStuckImports(pending []pendingImport) {
	dependsOn := make(map[ModuleID]map[ModuleID]bool)
	for _, pi := range pending {
		target, ok := p.targetModule(pi.edge)
		if !ok {
			continue
		}
		if dependsOn[pi.module.ID] == nil {
			dependsOn[pi.module.ID] = make(map[ModuleID]bool)
		}
		dependsOn[pi.module.ID][target.ID] = true
	}

	inCycle := func(start ModuleID) bool {
		visited := map[ModuleID]bool{start: true}
		stack := []ModuleID{start}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for next := range dependsOn[cur] {
				if next == start {
					return true
				}
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		return false
	}

	for _, pi := range pending {
		target, ok := p.targetModule(pi.edge)
		if !ok {
			diag.ReportError(p.rep, diag.HirUndeclaredModule, pi.edge.Span,
				"undeclared module '"+p.modulePathText(pi.edge.Path)+"'").Emit()
			continue
		}
		if inCycle(pi.module.ID) {
			diag.ReportError(p.rep, diag.HirImportCycle, pi.edge.Span,
				"cyclic re-export involving module '"+target.Path+"'").Emit()
			continue
		}
		diag.ReportError(p.rep, diag.HirUnresolvedImport, pi.edge.Span,
			"module '"+target.Path+"' has no public member '"+p.in.MustLookup(pi.edge.Name)+"'").Emit()
	}
}
