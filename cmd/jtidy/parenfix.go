package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"jtidy/internal/checkstyle"
	"jtidy/internal/diag"
	"jtidy/internal/diagfmt"
	"jtidy/internal/fix"
	"jtidy/internal/observ"
	"jtidy/internal/trace"
	"jtidy/internal/version"
)

var parenfixCmd = &cobra.Command{
	Use:   "parenfix [flags] [report]",
	Short: "Fix \"'(' is preceded with whitespace\" findings from a Checkstyle report",
	Long: `Read a plain-text Checkstyle report (from [report], or stdin when it is
omitted or "-") and delete the whitespace in front of every '(' it flags.
Several findings on one line are applied right to left. With --list the
findings are printed instead of applied.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParenfix,
}

func init() {
	parenfixCmd.Flags().String("root", "", "directory that relative report paths are resolved against")
	parenfixCmd.Flags().String("mode", "all", "which fixes to apply (all|once|id)")
	parenfixCmd.Flags().String("id", "", "apply the fix with this identifier (implies --mode id)")
	parenfixCmd.Flags().Bool("dry-run", false, "compute the changes, write nothing")
	parenfixCmd.Flags().Bool("list", false, "print the findings instead of applying them")
	parenfixCmd.Flags().String("format", "text", "output format (text|json|sarif; sarif needs --list)")
	parenfixCmd.Flags().String("path-mode", "auto", "how paths are printed (auto|absolute|relative|basename)")
	parenfixCmd.Flags().Int("max-diagnostics", 0, "maximum number of findings to keep (0 = no limit)")
}

type parenfixSettings struct {
	root      string
	mode      fix.ApplyMode
	id        string
	dryRun    bool
	list      bool
	format    string
	pathMode  diagfmt.PathMode
	max       int
	quiet     bool
	timings   bool
	useColor  bool
	baseDir   string
	invocArgs []string
}

func readParenfixSettings(cmd *cobra.Command) (parenfixSettings, error) {
	var s parenfixSettings
	var err error
	flags := cmd.Flags()

	if s.root, err = flags.GetString("root"); err != nil {
		return s, err
	}
	modeValue, err := flags.GetString("mode")
	if err != nil {
		return s, err
	}
	if s.mode, err = fix.ParseMode(modeValue); err != nil {
		return s, err
	}
	if s.id, err = flags.GetString("id"); err != nil {
		return s, err
	}
	if s.id != "" {
		if flags.Changed("mode") && s.mode != fix.ApplyModeID {
			return s, fmt.Errorf("--id cannot be combined with --mode %s", modeValue)
		}
		s.mode = fix.ApplyModeID
	}
	if s.mode == fix.ApplyModeID && s.id == "" {
		return s, fmt.Errorf("--mode id requires --id")
	}
	if s.dryRun, err = flags.GetBool("dry-run"); err != nil {
		return s, err
	}
	if s.list, err = flags.GetBool("list"); err != nil {
		return s, err
	}
	if s.format, err = flags.GetString("format"); err != nil {
		return s, err
	}
	switch s.format {
	case "text", "json":
	case "sarif":
		if !s.list {
			return s, fmt.Errorf("--format sarif is only supported with --list")
		}
	default:
		return s, fmt.Errorf("unsupported output format %q", s.format)
	}
	pathValue, err := flags.GetString("path-mode")
	if err != nil {
		return s, err
	}
	var ok bool
	if s.pathMode, ok = diagfmt.ParsePathMode(pathValue); !ok {
		return s, fmt.Errorf("invalid --path-mode %q (expected auto|absolute|relative|basename)", pathValue)
	}
	if s.max, err = flags.GetInt("max-diagnostics"); err != nil {
		return s, err
	}
	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return s, err
	}
	if s.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return s, err
	}
	if s.useColor, err = useColor(cmd); err != nil {
		return s, err
	}
	if s.baseDir, err = os.Getwd(); err != nil {
		return s, err
	}
	s.invocArgs = os.Args
	return s, nil
}

func runParenfix(cmd *cobra.Command, args []string) (runErr error) {
	cmd.SilenceUsage = true

	s, err := readParenfixSettings(cmd)
	if err != nil {
		return fmt.Errorf("parenfix: %w", err)
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(runErr) }()

	_, span := trace.StartSpan(cmd.Context(), trace.ScopePass, "parenfix")
	defer span.End("")

	var timer *observ.Timer
	if s.timings {
		timer = observ.NewTimer()
		defer func() { fmt.Fprint(cmd.ErrOrStderr(), timer.Summary()) }()
	}

	reportName := "-"
	if len(args) == 1 {
		reportName = args[0]
	}
	parsed := timer.Start("parse report")
	bag, err := readReport(cmd.InOrStdin(), reportName, s)
	parsed(fmt.Sprintf("%d findings", bag.Len()))
	if err != nil {
		return fmt.Errorf("parenfix: %s: %w", reportName, err)
	}
	span.WithExtra("findings", fmt.Sprint(bag.Len()))

	ws := fix.NewWorkspace(s.baseDir)
	out := cmd.OutOrStdout()
	if s.list {
		return listFindings(out, bag, ws, s)
	}

	applied := timer.Start("apply")
	res, applyErr := fix.Apply(ws, bag.Items(), fix.ApplyOptions{
		Mode:     s.mode,
		TargetID: s.id,
		DryRun:   s.dryRun,
	})
	applied(applyNote(res))
	if res != nil {
		for _, item := range res.Applied {
			span.Point(trace.ScopeLine, "fix:"+item.ID, item.Primary.String())
		}
	}

	if s.format == "json" {
		if err := renderApplyJSON(out, res, s, applyErr); err != nil {
			return err
		}
		if applyErr != nil && !errors.Is(applyErr, fix.ErrNoFixes) {
			return fmt.Errorf("parenfix: %w", applyErr)
		}
		return nil
	}
	if err := handleApplyResult(out, res, applyErr, s.quiet, s.dryRun); err != nil {
		return fmt.Errorf("parenfix: %w", err)
	}
	return nil
}

func readReport(stdin io.Reader, name string, s parenfixSettings) (*diag.Bag, error) {
	bag := diag.NewBag(s.max)
	r := stdin
	if name != "-" {
		// #nosec G304 -- report path comes from the command line
		f, err := os.Open(name)
		if err != nil {
			return bag, err
		}
		defer f.Close()
		r = f
	}
	reportName := name
	if name == "-" {
		reportName = "<stdin>"
	}
	_, err := checkstyle.ParseReport(r, checkstyle.Options{
		Root:     s.root,
		Reporter: diag.BagReporter{Bag: bag},
		// --list показывает битые строки отчёта вместе с находками
		KeepMalformed: s.list,
		ReportName:    reportName,
	})
	return bag, err
}

func listFindings(out io.Writer, bag *diag.Bag, ws *fix.Workspace, s parenfixSettings) error {
	bag.Sort()
	switch s.format {
	case "json":
		return diagfmt.JSON(out, bag, ws.Context(), diagfmt.JSONOpts{
			PathMode:        s.pathMode,
			BaseDir:         s.baseDir,
			IncludeFixes:    true,
			IncludePreviews: true,
		})
	case "sarif":
		return diagfmt.Sarif(out, bag, diagfmt.SarifRunMeta{
			ToolName:       "jtidy",
			ToolVersion:    version.Version,
			InvocationArgs: s.invocArgs,
			PathMode:       s.pathMode,
			BaseDir:        s.baseDir,
		})
	default:
		return diagfmt.Pretty(out, bag, diagfmt.PrettyOpts{
			Color:     s.useColor,
			PathMode:  s.pathMode,
			BaseDir:   s.baseDir,
			ShowFixes: !s.quiet,
		})
	}
}

func handleApplyResult(out io.Writer, res *fix.ApplyResult, applyErr error, quiet, dryRun bool) error {
	if res == nil {
		return applyErr
	}
	if !quiet {
		if err := printApplyResult(out, res, dryRun); err != nil {
			return err
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			if !quiet {
				_, err := fmt.Fprintln(out, "No applicable fixes found.")
				return err
			}
			return nil
		}
		return applyErr
	}
	return nil
}

func printApplyResult(out io.Writer, res *fix.ApplyResult, dryRun bool) error {
	if len(res.Applied) > 0 {
		verb := "Applied"
		if dryRun {
			verb = "Would apply"
		}
		if _, err := fmt.Fprintf(out, "%s %d fix(es):\n", verb, len(res.Applied)); err != nil {
			return err
		}
		for _, item := range res.Applied {
			if _, err := fmt.Fprintf(out, "  %s: %s [%s] (%d edits, %s)\n",
				item.Primary, item.Title, item.ID, item.EditCount, item.Applicability); err != nil {
				return err
			}
		}
	}

	if len(res.FileChanges) > 0 {
		header := "Updated files:"
		if dryRun {
			header = "Files that would change:"
		}
		if _, err := fmt.Fprintln(out, header); err != nil {
			return err
		}
		for _, change := range res.FileChanges {
			if _, err := fmt.Fprintf(out, "  %s (%d edits)\n", change.Path, change.EditCount); err != nil {
				return err
			}
		}
	}

	if len(res.Skipped) > 0 {
		if _, err := fmt.Fprintln(out, "Skipped fixes:"); err != nil {
			return err
		}
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if _, err := fmt.Fprintf(out, "  [%s]: %s\n", id, skip.Reason); err != nil {
				return err
			}
		}
	}
	return nil
}

type applyJSON struct {
	Applied []appliedJSON `json:"applied"`
	Skipped []skippedJSON `json:"skipped"`
	Files   []fileJSON    `json:"files"`
	DryRun  bool          `json:"dry_run"`
	Error   string        `json:"error,omitempty"`
}

type appliedJSON struct {
	ID       string               `json:"id"`
	Title    string               `json:"title"`
	Code     string               `json:"code"`
	Location diagfmt.LocationJSON `json:"location"`
	Edits    int                  `json:"edits"`
}

type skippedJSON struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type fileJSON struct {
	Path  string `json:"path"`
	Edits int    `json:"edits"`
}

func renderApplyJSON(out io.Writer, res *fix.ApplyResult, s parenfixSettings, applyErr error) error {
	payload := applyJSON{
		Applied: make([]appliedJSON, 0),
		Skipped: make([]skippedJSON, 0),
		Files:   make([]fileJSON, 0),
		DryRun:  s.dryRun,
	}
	if applyErr != nil {
		payload.Error = applyErr.Error()
	}
	if res != nil {
		for _, item := range res.Applied {
			payload.Applied = append(payload.Applied, appliedJSON{
				ID:    item.ID,
				Title: item.Title,
				Code:  item.Code.ID(),
				Location: diagfmt.LocationJSON{
					File:   item.Primary.Path,
					Line:   item.Primary.Line,
					Column: item.Primary.Column,
				},
				Edits: item.EditCount,
			})
		}
		for _, skip := range res.Skipped {
			payload.Skipped = append(payload.Skipped, skippedJSON{ID: skip.ID, Reason: skip.Reason})
		}
		for _, change := range res.FileChanges {
			payload.Files = append(payload.Files, fileJSON{Path: change.Path, Edits: change.EditCount})
		}
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func applyNote(res *fix.ApplyResult) string {
	if res == nil {
		return ""
	}
	return fmt.Sprintf("%d applied, %d skipped", len(res.Applied), len(res.Skipped))
}
