package eval

import (
	"sort"
	"strings"
)

// Builtins is the name -> Builtin table the evaluator consults for a call
// whose callee resolves to a name with no Neve-level definition — every
// stdlib function in internal/stdlib registers itself here via Register.
// Keeping the table on the Evaluator (rather than a package-level global)
// means two Evaluators in the same process (e.g. a REPL plus a
// background `neve build`) never share or clobber each other's
// registrations.
type Builtins struct {
	byName map[string]*Builtin
}

func NewBuiltins() *Builtins {
	return &Builtins{byName: make(map[string]*Builtin)}
}

// Register adds fn under name, callable with exactly arity arguments.
// Panicking on a duplicate name is deliberate: two stdlib packages
// registering the same name is a programming error that should fail at
// startup, not silently pick one.
func (b *Builtins) Register(name string, arity int, fn func(ev *Evaluator, args []*Thunk) (Value, error)) {
	if _, exists := b.byName[name]; exists {
		panic("eval: builtin " + name + " already registered")
	}
	b.byName[name] = &Builtin{Name: name, Arity: arity, Fn: fn}
}

func (b *Builtins) Lookup(name string) (*Builtin, bool) {
	bi, ok := b.byName[name]
	return bi, ok
}

// Namespace returns the sorted field names registered under
// "prefix.<field>" — used to materialize a prelude namespace (e.g.
// "list") into a record of builtins without internal/eval needing to
// know internal/stdlib's own function list.
func (b *Builtins) Namespace(prefix string) []string {
	p := prefix + "."
	var fields []string
	for name := range b.byName {
		if rest, ok := strings.CutPrefix(name, p); ok {
			fields = append(fields, rest)
		}
	}
	sort.Strings(fields)
	return fields
}
