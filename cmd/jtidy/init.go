package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"jtidy/internal/pkgdecl"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default jtidy.toml",
	Long: `Write a jtidy.toml with default settings into [path] (the current
directory when omitted). The package name defaults to the directory name.
An existing manifest is never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("name", "", "package name written to [package].name")
}

func runInit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return err
	}
	path, err := initManifest(target, name)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	if !quiet {
		printInitSummary(cmd.OutOrStdout(), path)
	}
	return nil
}

// initManifest creates target if needed and writes the default manifest
// into it. It returns the manifest path.
func initManifest(target, name string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	if st, err := os.Stat(abs); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %q: %w", abs, err)
		}
	} else if !st.IsDir() {
		return "", fmt.Errorf("%q is not a directory", abs)
	}

	if name == "" {
		name = packageNameFromDir(abs)
	}
	if err := pkgdecl.ValidateName(name); err != nil {
		return "", err
	}

	manifestPath := filepath.Join(abs, manifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return "", fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	// O_EXCL: существующий файл не трогаем
	f, err := os.OpenFile(manifestPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	if _, err := io.WriteString(f, buildDefaultManifest(name)); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return manifestPath, nil
}

// packageNameFromDir turns a directory name into a usable package name,
// falling back to "app".
func packageNameFromDir(dir string) string {
	base := strings.ToLower(strings.TrimSpace(filepath.Base(dir)))
	var b strings.Builder
	for i, r := range base {
		switch {
		case r == '_' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if strings.Trim(name, "_") == "" || pkgdecl.ValidateName(name) != nil {
		return "app"
	}
	return name
}

func printInitSummary(out io.Writer, manifestPath string) {
	rel := manifestPath
	if wd, err := os.Getwd(); err == nil {
		if r, err := filepath.Rel(wd, manifestPath); err == nil {
			rel = r
		}
	}
	fmt.Fprintf(out, "Initialized jtidy settings in %s\n", rel)
}
