package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"neve/internal/builder"
	"neve/internal/store"
	"neve/internal/ui"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect or garbage-collect the content-addressed store",
}

var storeGCCmd = &cobra.Command{
	Use:   "gc",
	Short: "Garbage-collect store paths unreachable from any GC root",
	Args:  cobra.NoArgs,
	RunE:  runStoreGC,
}

var storeInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Report store usage",
	Args:  cobra.NoArgs,
	RunE:  runStoreInfo,
}

func init() {
	storeGCCmd.Flags().Bool("dry-run", false, "report what would be deleted without deleting")
	storeGCCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	storeCmd.AddCommand(storeGCCmd)
	storeCmd.AddCommand(storeInfoCmd)
}

func runStoreGC(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	uiValue, _ := cmd.Flags().GetString("ui")
	uiMode, err := readUIMode(uiValue)
	if err != nil {
		return usageError(err)
	}

	scanner := builder.NewContentScanner(s)
	gc := store.NewGC(s, scanner)

	if shouldUseTUI(uiMode) {
		sink, events := ui.NewChannelSink(64)
		type outcome struct {
			res store.Result
			err error
		}
		done := make(chan outcome, 1)
		go func() {
			res, err := gc.Collect(dryRun)
			done <- outcome{res: res, err: err}
			sink.Close()
		}()
		program := tea.NewProgram(ui.NewProgressModel("neve store gc", nil, events), tea.WithOutput(os.Stdout))
		_, uiErr := program.Run()
		out := <-done
		if uiErr != nil {
			return internalError(uiErr)
		}
		if out.err != nil {
			return internalError(out.err)
		}
		return printGCResult(out.res, dryRun)
	}

	res, err := gc.Collect(dryRun)
	if err != nil {
		return internalError(err)
	}
	return printGCResult(res, dryRun)
}

func printGCResult(res store.Result, dryRun bool) error {
	verb := "deleted"
	if dryRun {
		verb = "would delete"
	}
	for _, p := range res.Deleted {
		fmt.Fprintf(os.Stdout, "%s %s\n", verb, p)
	}
	fmt.Fprintf(os.Stdout, "%s %d path(s), freed %d bytes\n", verb, len(res.Deleted), res.FreedBytes)
	return nil
}

func runStoreInfo(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	paths, err := s.ListPaths()
	if err != nil {
		return internalError(err)
	}
	size, err := s.Size()
	if err != nil {
		return internalError(err)
	}
	roots, err := s.ListRoots()
	if err != nil {
		return internalError(err)
	}
	fmt.Fprintf(os.Stdout, "store root: %s\n", s.Root())
	fmt.Fprintf(os.Stdout, "paths:      %d\n", len(paths))
	fmt.Fprintf(os.Stdout, "gc roots:   %d\n", len(roots))
	fmt.Fprintf(os.Stdout, "size:       %d bytes\n", size)

	if logIdx, err := s.OpenBuildLogIndex(); err == nil {
		fmt.Fprintf(os.Stdout, "build log:  %d recorded builds\n", logIdx.Len())
	}
	if metaCache, err := s.OpenDerivationMetadataCache(); err == nil {
		fmt.Fprintf(os.Stdout, "derivations: %d cached\n", metaCache.Len())
	}
	return nil
}
