package hir

// preludeNamespaces lists every dotted builtin namespace
// internal/stdlib registers onto an eval.Builtins table (list, string,
// math, io, option, result, and the map/set collection module), plus the
// one bare (unqualified) builtin name, "derivation". Resolve seeds each
// module's name table with one DefPrelude per entry before resolving
// identifiers, so unqualified code can call `list.map(...)`,
// `string.to_upper(...)`, or `derivation(...)` without any import
// declaration. A module's own top-level definition of the same name
// always wins — seeding only fills names not already claimed — so this
// never raises the duplicate-definition diagnostic a real collision
// between two user items would.
var preludeNamespaces = []string{
	"list", "string", "math", "io", "option", "result", "map", "set", "collections",
	"derivation",
}

func (p *Program) seedPrelude(m *Module) {
	for _, name := range preludeNamespaces {
		sym := p.in.Intern(name)
		if _, exists := m.names[sym]; exists {
			continue
		}
		id := p.defArena.add(Def{Kind: DefPrelude, Name: sym, Module: m.ID})
		m.names[sym] = id
	}
}
