package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"neve/internal/builder"
	"neve/internal/deriv"
	"neve/internal/eval"
	"neve/internal/ui"
)

var buildCmd = &cobra.Command{
	Use:   "build FILE",
	Short: "Evaluate a file to a derivation and realize it",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	buildCmd.Flags().Bool("keep-failed", false, "preserve the scratch build directory on failure")
}

func runBuild(cmd *cobra.Command, args []string) error {
	l, bag, err := loadSource(cmd, args[0], "", "")
	if err != nil {
		printDiagnostics(cmd, l.fs, bag)
		return err
	}
	defID, ok := l.lastLetDef()
	if !ok {
		return userError(fmt.Errorf("%s: no top-level let binding evaluates to a derivation", args[0]))
	}

	s, err := openStore()
	if err != nil {
		return err
	}

	keepFailed, _ := cmd.Flags().GetBool("keep-failed")
	uiValue, _ := cmd.Flags().GetString("ui")
	uiMode, err := readUIMode(uiValue)
	if err != nil {
		return usageError(err)
	}
	if _, err := buildBackend(); err != nil {
		return usageError(err)
	}

	v, err := l.ev.Global(defID).Force()
	if err != nil {
		return userError(fmt.Errorf("build: %w", err))
	}
	if v.Kind != eval.KindDerivation {
		return userError(fmt.Errorf("%s: top-level binding is not a derivation", args[0]))
	}

	names := collectDerivationNames(v.Deriv, map[string]bool{})

	cfg := builder.Config{MaxJobs: buildJobs(), KeepFailed: keepFailed}
	if shouldUseTUI(uiMode) {
		sink, events := ui.NewChannelSink(256)
		cfg.Sink = sink
		b := builder.New(s, cfg)
		l.ev.SetRealizer(b)

		type outcome struct {
			outputs map[string]string
			err     error
		}
		done := make(chan outcome, 1)
		go func() {
			outs, err := b.Realize(v.Deriv)
			done <- outcome{outputs: outs, err: err}
			sink.Close()
		}()

		program := tea.NewProgram(ui.NewProgressModel("neve build", names, events), tea.WithOutput(os.Stdout))
		_, uiErr := program.Run()
		out := <-done
		if uiErr != nil {
			return internalError(uiErr)
		}
		if out.err != nil {
			return userError(out.err)
		}
		return printOutputs(out.outputs)
	}

	b := builder.New(s, cfg)
	l.ev.SetRealizer(b)
	outputs, err := b.Realize(v.Deriv)
	if err != nil {
		return userError(err)
	}
	return printOutputs(outputs)
}

func printOutputs(outputs map[string]string) error {
	if p, ok := outputs["out"]; ok {
		fmt.Fprintln(os.Stdout, p)
		return nil
	}
	for name, p := range outputs {
		fmt.Fprintf(os.Stdout, "%s: %s\n", name, p)
	}
	return nil
}

func collectDerivationNames(d *deriv.Derivation, seen map[string]bool) []string {
	if d == nil || seen[d.Name] {
		return nil
	}
	seen[d.Name] = true
	names := []string{d.Name}
	for _, in := range d.Inputs {
		names = append(names, collectDerivationNames(in.Derivation, seen)...)
	}
	return names
}

// wireBuilderIfBuildable gives `run` a working Realizer so a file whose
// value happens to force a derivation (e.g. through string interpolation)
// doesn't fail with "no builder configured"; `run` never shows build
// progress, since its scope is printing a value, not producing outputs.
func wireBuilderIfBuildable(l *loaded) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	b := builder.New(s, builder.Config{MaxJobs: buildJobs()})
	l.ev.SetRealizer(b)
	return nil
}
