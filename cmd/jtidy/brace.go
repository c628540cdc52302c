package main

import (
	"github.com/spf13/cobra"

	"jtidy/internal/brace"
)

var braceCmd = &cobra.Command{
	Use:   "brace [flags] <path> [path...]",
	Short: "Move trailing opening braces onto their own lines",
	Long: `Rewrite Java sources so that every '{' ending a code line is moved to
the next line, indented like the statement that owns it. Directories are
walked recursively; files are replaced atomically.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBrace,
}

func init() {
	addPassFlags(braceCmd)
}

func runBrace(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	settings, err := readPassSettings(cmd)
	if err != nil {
		return err
	}
	return runPass(cmd, args, brace.Pass{}, settings)
}
