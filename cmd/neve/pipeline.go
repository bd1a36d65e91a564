package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"neve/internal/diag"
	"neve/internal/diagfmt"
	"neve/internal/eval"
	"neve/internal/hir"
	"neve/internal/lexer"
	"neve/internal/parser"
	"neve/internal/sema"
	"neve/internal/source"
	"neve/internal/stdlib"
	"neve/internal/types"
)

// loaded bundles everything evaluating one program needs: the resolved
// HIR, its interner, and an Evaluator with the full standard library
// registered.
type loaded struct {
	fs   *source.FileSet
	in   *source.Interner
	prog *hir.Program
	mod  *hir.Module
	ev   *eval.Evaluator
}

func maxDiagnosticsFlag(cmd *cobra.Command) int {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil || n <= 0 {
		return 100
	}
	return n
}

func printDiagnostics(cmd *cobra.Command, fs *source.FileSet, bag *diag.Bag) {
	bag.Sort()
	bag.Dedup()
	diagfmt.Pretty(os.Stderr, bag, fs, diagfmt.PrettyOpts{
		Color:       useColor(cmd),
		Context:     2,
		PathMode:    diagfmt.PathModeAuto,
		ShowNotes:   true,
		ShowPreview: true,
	})
}

// loadSource parses, name-resolves, and type-checks either a real file
// (path != "") or virtual content under virtualName (e.g. "<eval>"). It reports
// every diagnostic collected along the way and returns an error once the
// bag holds any.
func loadSource(cmd *cobra.Command, path, virtualName, content string) (*loaded, *diag.Bag, error) {
	bag := diag.NewBag(maxDiagnosticsFlag(cmd))
	rep := &diag.BagReporter{Bag: bag}

	fs := source.NewFileSet()
	in := source.NewInterner()

	partial := &loaded{fs: fs, in: in}

	var id source.FileID
	var err error
	if path != "" {
		id, err = fs.Load(path)
		if err != nil {
			return partial, bag, userError(fmt.Errorf("%s: %w", path, err))
		}
	} else {
		id = fs.AddVirtual(virtualName, []byte(content))
	}

	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	res := parser.ParseFile(fs, in, lx, parser.Options{Reporter: rep})
	if bag.HasErrors() {
		return partial, bag, userError(fmt.Errorf("parse failed"))
	}

	prog := hir.NewProgram(in, rep)
	mod := prog.AddModule("main", res.Module)
	prog.ResolveImports()
	prog.Resolve()
	partial.prog, partial.mod = prog, mod
	if bag.HasErrors() {
		return partial, bag, userError(fmt.Errorf("name resolution failed"))
	}

	store := types.NewStore()
	checker := sema.NewChecker(prog, in, rep, store)
	checker.Check()
	if bag.HasErrors() {
		return partial, bag, userError(fmt.Errorf("type checking failed"))
	}

	builtins := eval.NewBuiltins()
	stdlib.Register(builtins)
	ev := eval.NewEvaluator(prog, in, builtins)

	return &loaded{fs: fs, in: in, prog: prog, mod: mod, ev: ev}, bag, nil
}

// lastLetDef returns the most recently declared `let` binding in l.mod,
// the "last expression" spec.md's `run` command evaluates.
func (l *loaded) lastLetDef() (hir.DefID, bool) {
	for i := len(l.mod.Defs) - 1; i >= 0; i-- {
		defID := l.mod.Defs[i]
		if l.prog.Def(defID).Kind == hir.DefLet {
			return defID, true
		}
	}
	return hir.NoDefID, false
}
