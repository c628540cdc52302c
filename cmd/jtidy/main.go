package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jtidy/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "jtidy",
	Short: "Java source clean-up passes",
	Long: `jtidy rewrites Java source trees: it moves trailing opening braces onto
their own lines, inserts missing package declarations and fixes the
"'(' is preceded with whitespace" findings of a Checkstyle report.`,
	SilenceErrors: true,
}

var configureOnce sync.Once

// main registers subcommands and persistent flags, then executes the root
// command. Any error ends the process with status 1.
func main() {
	configureOnce.Do(configureRoot)
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func configureRoot() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(braceCmd)
	rootCmd.AddCommand(addpkgCmd)
	rootCmd.AddCommand(parenfixCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("ui", "auto", "progress UI (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to jtidy.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to a file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept in ring mode")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color against the terminal state of stdout.
func useColor(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch value {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(os.Stdout), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func printError(err error) {
	msg := err.Error()
	colorFlag, _ := rootCmd.PersistentFlags().GetString("color")
	if colorFlag == "on" || (colorFlag != "off" && isTerminal(os.Stderr)) {
		c := color.New(color.FgRed)
		c.EnableColor()
		msg = c.Sprint(msg)
	}
	fmt.Fprintln(os.Stderr, msg)
}
