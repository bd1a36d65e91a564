package types

import (
	"fmt"
	"strings"

	"neve/internal/source"
)

// Label renders a TypeID as the surface syntax a diagnostic should show the
// user, following variable links and recursing into compound types.
func Label(in *source.Interner, store *Store, id TypeID) string {
	return labelDepth(in, store, id, 0)
}

func labelDepth(in *source.Interner, store *Store, id TypeID, depth int) string {
	if id == NoTypeID || store == nil {
		return "?"
	}
	if depth > 8 {
		return "..."
	}
	id = store.Resolve(id)
	t := store.Get(id)
	switch t.Kind {
	case KindVar:
		return fmt.Sprintf("t%d", t.VarID)
	case KindUnit:
		return "()"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindChar:
		return "Char"
	case KindPath:
		return "Path"
	case KindList:
		return "[" + labelDepth(in, store, t.Elem, depth+1) + "]"
	case KindTuple:
		parts := make([]string, len(t.Elems))
		for i, el := range t.Elems {
			parts[i] = labelDepth(in, store, el, depth+1)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindRecord:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = name(in, f.Name) + ": " + labelDepth(in, store, f.Type, depth+1)
		}
		body := strings.Join(parts, ", ")
		if t.RowVar != NoTypeID {
			if body != "" {
				body += ", "
			}
			body += ".." + labelDepth(in, store, t.RowVar, depth+1)
		}
		return "#{" + body + "}"
	case KindFunction:
		params := make([]string, len(t.Elems))
		for i, p := range t.Elems {
			params[i] = labelDepth(in, store, p, depth+1)
		}
		return "fn(" + strings.Join(params, ", ") + ") -> " + labelDepth(in, store, t.Elem, depth+1)
	case KindConstructor:
		n := name(in, t.Name)
		if len(t.Elems) == 0 {
			return n
		}
		args := make([]string, len(t.Elems))
		for i, a := range t.Elems {
			args[i] = labelDepth(in, store, a, depth+1)
		}
		return n + "<" + strings.Join(args, ", ") + ">"
	default:
		return "?"
	}
}

func name(in *source.Interner, s source.Symbol) string {
	if in == nil {
		return "?"
	}
	n, ok := in.Lookup(s)
	if !ok {
		return "?"
	}
	return n
}
