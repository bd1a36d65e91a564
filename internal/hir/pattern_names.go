package hir

import (
	"neve/internal/ast"
	"neve/internal/source"
)

// patName is one name a pattern binds, with the span of the binding
// occurrence (used when declaring it as a top-level Def).
type patName struct {
	name source.Symbol
	span source.Span
}

// collectPatternNames walks a pattern and returns every name it binds, in
// left-to-right order. Used for top-level `let` items whose pattern is not
// a plain identifier, so each bound name still gets its own module-level
// Def. Or-pattern alternatives are assumed to bind the same names (see
// bindPattern's handling of ast.PatOr); only the first alternative's names
// are collected here to avoid declaring duplicates.
func collectPatternNames(mod *ast.Module, id ast.PatternID) []patName {
	var out []patName
	var walk func(ast.PatternID)
	walk = func(id ast.PatternID) {
		if id == ast.NoPatternID {
			return
		}
		pat := mod.Patterns.Get(id)
		switch pat.Kind {
		case ast.PatIdent:
			out = append(out, patName{name: pat.Name, span: pat.Span})
		case ast.PatBind:
			out = append(out, patName{name: pat.Name, span: pat.Span})
			walk(pat.Inner)
		case ast.PatTuple:
			for _, el := range pat.Elems {
				walk(el)
			}
		case ast.PatOr:
			if len(pat.Elems) > 0 {
				walk(pat.Elems[0])
			}
		case ast.PatList:
			for _, h := range pat.Head {
				walk(h)
			}
			if pat.HasRest && pat.RestName != source.NoSymbol {
				out = append(out, patName{name: pat.RestName, span: pat.Span})
			}
		case ast.PatRecord:
			for _, f := range pat.RecordFields {
				if f.Pattern == ast.NoPatternID {
					out = append(out, patName{name: f.Name, span: pat.Span})
					continue
				}
				walk(f.Pattern)
			}
			if pat.HasRecordRest && pat.RecordRestName != source.NoSymbol {
				out = append(out, patName{name: pat.RecordRestName, span: pat.Span})
			}
		case ast.PatConstructor:
			for _, arg := range pat.Args {
				walk(arg)
			}
		case ast.PatWildcard, ast.PatLit:
		}
	}
	walk(id)
	return out
}
