package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"neve/internal/project"
)

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Install, remove, or list packages declared in neve.toml",
}

var packageInstallCmd = &cobra.Command{
	Use:   "install NAME",
	Short: "Declare a dependency and rebuild the configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runPackageInstall,
}

var packageRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a declared dependency and rebuild the configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runPackageRemove,
}

var packageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the dependencies declared in neve.toml",
	Args:  cobra.NoArgs,
	RunE:  runPackageList,
}

func init() {
	packageInstallCmd.Flags().String("url", "", "fetch this dependency from a URL source")
	packageInstallCmd.Flags().String("git", "", "fetch this dependency from a git repository")
	packageInstallCmd.Flags().String("path", "", "fetch this dependency from a local path")
	packageInstallCmd.Flags().String("rev", "", "git revision, for --git sources")
	packageCmd.AddCommand(packageInstallCmd)
	packageCmd.AddCommand(packageRemoveCmd)
	packageCmd.AddCommand(packageListCmd)
}

// runPackageInstall declares NAME as a dependency in neve.toml, saves the
// manifest, and rebuilds the configuration generation — "package" is a
// thin, manifest-editing shell over the same build+generation layer
// "config build" uses, per spec.md's description of both commands.
func runPackageInstall(cmd *cobra.Command, args []string) error {
	name := args[0]
	path, ok, err := project.FindManifest(".")
	if err != nil {
		return internalError(err)
	}
	if !ok {
		return userError(fmt.Errorf("no %s found in this directory or any parent", project.ManifestFileName))
	}
	m, err := project.LoadManifest(path)
	if err != nil {
		return userError(err)
	}

	urlFlag, _ := cmd.Flags().GetString("url")
	gitFlag, _ := cmd.Flags().GetString("git")
	pathFlag, _ := cmd.Flags().GetString("path")
	rev, _ := cmd.Flags().GetString("rev")

	spec := project.DependencySpec{}
	switch {
	case gitFlag != "":
		spec.Source, spec.URL, spec.Rev = "git", gitFlag, rev
	case pathFlag != "":
		spec.Source, spec.Path = "local", pathFlag
	case urlFlag != "":
		spec.Source, spec.URL = "url", urlFlag
	default:
		return usageError(fmt.Errorf("package install %s: exactly one of --url, --git, --path is required", name))
	}

	if m.Dependencies == nil {
		m.Dependencies = map[string]project.DependencySpec{}
	}
	m.Dependencies[name] = spec
	if err := saveManifest(path, m); err != nil {
		return internalError(err)
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
	fmt.Fprintf(os.Stdout, "installed %q (generation %d)\n", name, gen.Number)
	return nil
}

func runPackageRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	path, ok, err := project.FindManifest(".")
	if err != nil {
		return internalError(err)
	}
	if !ok {
		return userError(fmt.Errorf("no %s found in this directory or any parent", project.ManifestFileName))
	}
	m, err := project.LoadManifest(path)
	if err != nil {
		return userError(err)
	}
	if _, ok := m.Dependencies[name]; !ok {
		return userError(fmt.Errorf("no dependency named %q declared in %s", name, path))
	}
	delete(m.Dependencies, name)
	if err := saveManifest(path, m); err != nil {
		return internalError(err)
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
	fmt.Fprintf(os.Stdout, "removed %q (generation %d)\n", name, gen.Number)
	return nil
}

func runPackageList(cmd *cobra.Command, args []string) error {
	m, err := loadManifestHere()
	if err != nil {
		return err
	}
	for _, name := range m.Names() {
		spec := m.Dependencies[name]
		loc := spec.URL
		if spec.Path != "" {
			loc = spec.Path
		}
		fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", name, spec.Source, loc)
	}
	return nil
}

// saveManifest rewrites path with m's [package] and [dependencies]
// tables. Comments and formatting any hand-edited neve.toml had are not
// preserved — the same tradeoff BurntSushi/toml's encoder makes for the
// lockfile it already round-trips.
func saveManifest(path string, m *project.Manifest) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[package]\nname = %q\n", m.Package.Name)
	if m.Package.Version != "" {
		fmt.Fprintf(&b, "version = %q\n", m.Package.Version)
	}
	if m.Package.System != "" {
		fmt.Fprintf(&b, "system = %q\n", m.Package.System)
	}
	for _, name := range m.Names() {
		spec := m.Dependencies[name]
		fmt.Fprintf(&b, "\n[dependencies.%s]\n", name)
		if spec.Source != "" {
			fmt.Fprintf(&b, "source = %q\n", spec.Source)
		}
		if spec.URL != "" {
			fmt.Fprintf(&b, "url = %q\n", spec.URL)
		}
		if spec.Rev != "" {
			fmt.Fprintf(&b, "rev = %q\n", spec.Rev)
		}
		if spec.Path != "" {
			fmt.Fprintf(&b, "path = %q\n", spec.Path)
		}
		if spec.Unpack {
			fmt.Fprintf(&b, "unpack = true\n")
		}
		if spec.Hash != "" {
			fmt.Fprintf(&b, "hash_algorithm = %q\nhash = %q\n", spec.HashAlgorithm, spec.Hash)
		}
	}
	return os.WriteFile(filepath.Clean(path), []byte(b.String()), 0o644)
}
