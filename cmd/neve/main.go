// Package main implements the neve CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"neve/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "neve",
	Short: "Neve language evaluator and package/configuration manager",
	Long:  `Neve is a pure functional language for declarative system configuration and package management.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(packageCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// isTerminal reports whether f is connected to an interactive terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command) bool {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		mode = "auto"
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// exitCode is returned by RunE implementations via a usageError/internalError
// wrapper to pick the process exit status spec.md's §6 defines: 1 for a
// user error, 2 for an internal one, 64 for a usage error. Cobra's own
// argument-validation failures fall through to the default 1.
type exitCode int

const (
	exitUser     exitCode = 1
	exitInternal exitCode = 2
	exitUsage    exitCode = 64
)

type exitError struct {
	code exitCode
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitUser, err: err}
}

func internalError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitInternal, err: err}
}

func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitUsage, err: err}
}

func exitCodeFor(err error) int {
	var ee *exitError
	for e := err; e != nil; {
		if cast, ok := e.(*exitError); ok {
			ee = cast
			break
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	if ee != nil {
		return int(ee.code)
	}
	return int(exitUser)
}
