package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"neve/internal/eval"
)

var evalCmd = &cobra.Command{
	Use:   "eval EXPR",
	Short: "Parse, type-check, and evaluate a single expression",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

func runEval(cmd *cobra.Command, args []string) error {
	content := "let __result__ = (" + args[0] + ");"
	l, bag, err := loadSource(cmd, "", "<eval>", content)
	if err != nil {
		printDiagnostics(cmd, l.fs, bag)
		return err
	}
	defID, ok := l.lastLetDef()
	if !ok {
		return internalError(fmt.Errorf("eval: no binding produced"))
	}
	v, err := l.ev.Global(defID).Force()
	if err != nil {
		return userError(fmt.Errorf("eval: %w", err))
	}
	if v.Kind == eval.KindDerivation {
		out, err := l.ev.RealizeToString(v)
		if err != nil {
			return userError(fmt.Errorf("eval: %w", err))
		}
		fmt.Fprintln(os.Stdout, out)
		return nil
	}
	fmt.Fprintln(os.Stdout, v.Render(l.in))
	return nil
}
