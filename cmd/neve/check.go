package main

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Type-check a file; no output on success",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	l, bag, err := loadSource(cmd, args[0], "", "")
	if err != nil {
		printDiagnostics(cmd, l.fs, bag)
		return err
	}
	return nil
}
