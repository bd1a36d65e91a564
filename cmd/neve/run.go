package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"neve/internal/eval"
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Evaluate a file and print the last expression's value",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

func runFile(cmd *cobra.Command, args []string) error {
	l, bag, err := loadSource(cmd, args[0], "", "")
	if err != nil {
		printDiagnostics(cmd, l.fs, bag)
		return err
	}
	defID, ok := l.lastLetDef()
	if !ok {
		return userError(fmt.Errorf("%s: no top-level let binding to evaluate", args[0]))
	}

	if err := wireBuilderIfBuildable(l); err != nil {
		return err
	}

	v, err := l.ev.Global(defID).Force()
	if err != nil {
		return userError(fmt.Errorf("run: %w", err))
	}
	if v.Kind == eval.KindDerivation {
		out, err := l.ev.RealizeToString(v)
		if err != nil {
			return userError(fmt.Errorf("run: %w", err))
		}
		fmt.Fprintln(os.Stdout, out)
		return nil
	}
	fmt.Fprintln(os.Stdout, v.Render(l.in))
	return nil
}
