package sema

import (
	"neve/internal/ast"
	"neve/internal/diag"
	"neve/internal/hir"
	"neve/internal/types"
)

// checkExhaustive is a condensed exhaustiveness check, not a full
// Maranget-style decision-tree construction: it only handles the single
// most common shape (a match directly over one enum-typed scrutinee) by
// comparing the set of variant names actually covered by the arms'
// top-level patterns against the enum's declared variants. Nested or
// multi-scrutinee exhaustiveness (matching inside a tuple of enums, for
// instance) is not attempted; see DESIGN.md.
func (c *Checker) checkExhaustive(m *hir.Module, e *ast.Expr, scrutinee types.TypeID) {
	resolved := c.store.Resolve(scrutinee)
	t := c.store.Get(resolved)
	if t.Kind != types.KindConstructor {
		return
	}
	enumDefID := hir.DefID(t.Def)
	ed, ok := c.enums[enumDefID]
	if !ok {
		return
	}

	covered := make(map[string]bool, len(ed.order))
	wildcard := false
	for _, arm := range e.Arms {
		if c.coversWildcard(m, arm.Pattern) && arm.Guard == ast.NoExprID {
			wildcard = true
		}
		c.collectCoveredVariants(m, arm.Pattern, covered)
	}
	if wildcard {
		return
	}
	for _, name := range ed.order {
		if !covered[c.in.MustLookup(name)] {
			c.errorf(e.Span, diag.TypeNonExhaustiveMatch, "non-exhaustive match: missing variant '"+c.in.MustLookup(name)+"'")
			return
		}
	}
}

// coversWildcard reports whether pat matches any value of its type
// unconditionally: a bare wildcard, an unguarded fresh binding, or a
// `name @ pattern` whose inner pattern also does.
func (c *Checker) coversWildcard(m *hir.Module, id ast.PatternID) bool {
	if id == ast.NoPatternID {
		return false
	}
	pat := m.AST.Patterns.Get(id)
	switch pat.Kind {
	case ast.PatWildcard:
		return true
	case ast.PatIdent:
		key := hir.NodeKey{Module: m.ID, Node: uint32(id)}
		_, isVariant := c.prog.TypeRefs[key]
		return !isVariant
	case ast.PatBind:
		return c.coversWildcard(m, pat.Inner)
	case ast.PatOr:
		for _, alt := range pat.Elems {
			if c.coversWildcard(m, alt) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// collectCoveredVariants records, into covered, the name of every enum
// variant id's pattern (or any of its or-pattern alternatives) matches
// directly.
func (c *Checker) collectCoveredVariants(m *hir.Module, id ast.PatternID, covered map[string]bool) {
	if id == ast.NoPatternID {
		return
	}
	pat := m.AST.Patterns.Get(id)
	key := hir.NodeKey{Module: m.ID, Node: uint32(id)}
	switch pat.Kind {
	case ast.PatIdent, ast.PatConstructor:
		if def, ok := c.prog.TypeRefs[key]; ok {
			covered[c.in.MustLookup(c.prog.Def(def).Name)] = true
		}
	case ast.PatBind:
		c.collectCoveredVariants(m, pat.Inner, covered)
	case ast.PatOr:
		for _, alt := range pat.Elems {
			c.collectCoveredVariants(m, alt, covered)
		}
	}
}
