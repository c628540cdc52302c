package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jtidy/internal/pkgdecl"
)

var addpkgCmd = &cobra.Command{
	Use:   "addpkg [flags] <path> [path...]",
	Short: "Insert a package declaration after the first empty line",
	Long: `Insert "package <name>;" after the first empty line of every Java source
that has no package declaration yet. The name comes from --name or from
[package].name in jtidy.toml.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAddpkg,
}

func init() {
	addPassFlags(addpkgCmd)
	addpkgCmd.Flags().String("name", "", "package name to declare, e.g. mnj.lua")
}

func runAddpkg(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	settings, err := readPassSettings(cmd)
	if err != nil {
		return err
	}
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return err
	}
	name, err = resolvePackageName(name, settings.manifest)
	if err != nil {
		return fmt.Errorf("addpkg: %w", err)
	}
	return runPass(cmd, args, pkgdecl.Pass{Package: name}, settings)
}

// resolvePackageName prefers the flag value over the manifest.
func resolvePackageName(flagValue string, manifest *projectManifest) (string, error) {
	name := strings.TrimSpace(flagValue)
	if name == "" && manifest != nil {
		name = manifest.Config.Package.Name
	}
	if name == "" {
		return "", fmt.Errorf("no package name: pass --name or set [package].name in %s", manifestName)
	}
	if err := pkgdecl.ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}
