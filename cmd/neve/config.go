package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"neve/internal/config"
	"neve/internal/project"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage system-configuration generations",
}

var configBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Resolve neve.toml's dependencies and record a new generation",
	Args:  cobra.NoArgs,
	RunE:  runConfigBuild,
}

var configSwitchCmd = &cobra.Command{
	Use:   "switch N",
	Short: "Switch the current generation to N",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSwitch,
}

var configRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Switch to the generation before the current one",
	Args:  cobra.NoArgs,
	RunE:  runConfigRollback,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded generations",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

func init() {
	configCmd.AddCommand(configBuildCmd)
	configCmd.AddCommand(configSwitchCmd)
	configCmd.AddCommand(configRollbackCmd)
	configCmd.AddCommand(configListCmd)
}

func loadManifestHere() (*project.Manifest, error) {
	path, ok, err := project.FindManifest(".")
	if err != nil {
		return nil, internalError(err)
	}
	if !ok {
		return nil, userError(fmt.Errorf("no %s found in this directory or any parent", project.ManifestFileName))
	}
	return project.LoadManifest(path)
}

func newResolver() (*config.Resolver, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	return config.NewResolver(s), nil
}

func runConfigBuild(cmd *cobra.Command, args []string) error {
	m, err := loadManifestHere()
	if err != nil {
		return err
	}
	r, err := newResolver()
	if err != nil {
		return err
	}
	gen, bag, err := r.Build(cmd.Context(), m)
	if err != nil {
		for _, d := range bag.Items() {
			fmt.Fprintln(os.Stderr, d.Message)
		}
		return userError(err)
	}
	lf := project.LockFromManifest(m)
	if err := project.SaveLockfile(lockfilePathNextTo(m), lf); err != nil {
		return internalError(err)
	}
	fmt.Fprintf(os.Stdout, "generation %d: %s\n", gen.Number, gen.Root)
	return nil
}

func lockfilePathNextTo(m *project.Manifest) string {
	return filepath.Join(m.Dir, project.LockfileFileName)
}

func runConfigSwitch(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return usageError(fmt.Errorf("invalid generation number %q", args[0]))
	}
	r, err := newResolver()
	if err != nil {
		return err
	}
	if err := r.Switch(n); err != nil {
		return userError(err)
	}
	fmt.Fprintf(os.Stdout, "switched to generation %d\n", n)
	return nil
}

func runConfigRollback(cmd *cobra.Command, args []string) error {
	r, err := newResolver()
	if err != nil {
		return err
	}
	gen, err := r.Rollback()
	if err != nil {
		return userError(err)
	}
	fmt.Fprintf(os.Stdout, "rolled back to generation %d\n", gen.Number)
	return nil
}

func runConfigList(cmd *cobra.Command, args []string) error {
	r, err := newResolver()
	if err != nil {
		return err
	}
	gens, err := r.List()
	if err != nil {
		return internalError(err)
	}
	cur, ok, err := r.Current()
	if err != nil {
		return internalError(err)
	}
	for _, g := range gens {
		marker := "  "
		if ok && g.Number == cur.Number {
			marker = "* "
		}
		fmt.Fprintf(os.Stdout, "%s%d %s\n", marker, g.Number, g.Root)
	}
	return nil
}
