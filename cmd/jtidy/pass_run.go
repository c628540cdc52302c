package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jtidy/internal/cache"
	"jtidy/internal/driver"
	"jtidy/internal/observ"
)

// passSettings is the merged view of flags and jtidy.toml for a file pass.
type passSettings struct {
	check      bool
	stdout     bool
	format     string
	jobs       int
	cache      bool
	clearCache bool
	extensions []string
	quiet      bool
	timings    bool
	ui         uiMode
	manifest   *projectManifest
}

func addPassFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("check", false, "list files that would change, write nothing")
	cmd.Flags().Bool("stdout", false, "print rewritten sources to stdout instead of rewriting files")
	cmd.Flags().String("format", "text", "output format (text|json)")
	cmd.Flags().Int("jobs", 1, "number of files processed concurrently")
	cmd.Flags().Bool("cache", false, "skip files whose content is this pass's last output (a pass that would change its own output again is not re-run)")
	cmd.Flags().Bool("clear-cache", false, "drop the cache before running")
	cmd.Flags().StringSlice("ext", nil, "file extensions collected from directories (default .java)")
}

// readPassSettings resolves flags, letting explicitly set flags win over
// values from jtidy.toml.
func readPassSettings(cmd *cobra.Command) (passSettings, error) {
	var s passSettings
	var err error
	flags := cmd.Flags()

	if s.check, err = flags.GetBool("check"); err != nil {
		return s, err
	}
	if s.stdout, err = flags.GetBool("stdout"); err != nil {
		return s, err
	}
	if s.format, err = flags.GetString("format"); err != nil {
		return s, err
	}
	if s.jobs, err = flags.GetInt("jobs"); err != nil {
		return s, err
	}
	if s.cache, err = flags.GetBool("cache"); err != nil {
		return s, err
	}
	if s.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return s, err
	}
	if s.extensions, err = flags.GetStringSlice("ext"); err != nil {
		return s, err
	}
	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return s, err
	}
	if s.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return s, err
	}
	uiValue, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return s, err
	}
	if s.ui, err = readUIMode(uiValue); err != nil {
		return s, err
	}

	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return s, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return s, err
	}
	if s.manifest, err = loadProjectManifest(configPath, wd); err != nil {
		return s, err
	}
	s.applyManifest(func(name string) bool { return flags.Changed(name) })

	if err := s.validate(cmd.Name()); err != nil {
		return s, err
	}
	return s, nil
}

// applyManifest fills settings whose flag was not set on the command line.
func (s *passSettings) applyManifest(changed func(string) bool) {
	if s.manifest == nil {
		return
	}
	cfg := s.manifest.Config
	if !changed("jobs") && cfg.Run.Jobs > 0 {
		s.jobs = cfg.Run.Jobs
	}
	if !changed("cache") && cfg.Run.Cache {
		s.cache = true
	}
	if !changed("ext") && len(cfg.Files.Extensions) > 0 {
		s.extensions = cfg.Files.Extensions
	}
}

func (s *passSettings) validate(name string) error {
	if s.stdout && s.check {
		return fmt.Errorf("%s: --stdout cannot be used with --check", name)
	}
	if s.stdout && s.format != "text" {
		return fmt.Errorf("%s: --stdout is only supported with text output", name)
	}
	if s.format != "text" && s.format != "json" {
		return fmt.Errorf("%s: unsupported output format %q", name, s.format)
	}
	if s.jobs < 1 {
		return fmt.Errorf("%s: --jobs must be at least 1", name)
	}
	for i, ext := range s.extensions {
		if !strings.HasPrefix(ext, ".") {
			s.extensions[i] = "." + ext
		}
	}
	return nil
}

// runPass drives pass over args and renders the results.
func runPass(cmd *cobra.Command, args []string, pass driver.Pass, s passSettings) (runErr error) {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(runErr) }()

	opts := driver.Options{
		Check:      s.check,
		Stdout:     s.stdout,
		Jobs:       s.jobs,
		Extensions: s.extensions,
	}
	if s.timings {
		opts.Timer = observ.NewTimer()
	}
	if s.cache {
		dc, err := cache.Open("jtidy")
		if err != nil {
			return fmt.Errorf("%s: %w", pass.Name(), err)
		}
		if s.clearCache {
			if err := dc.DropAll(); err != nil {
				return fmt.Errorf("%s: %w", pass.Name(), err)
			}
		}
		opts.Cache = dc
	}

	ctx := cmd.Context()
	var results []driver.Result
	var passErr error
	if !s.stdout && !s.quiet && s.format == "text" && s.ui.useTUI(cmd.OutOrStdout()) {
		collected := opts.Timer.Start("collect")
		files, err := driver.Collect(ctx, args, opts.Extensions)
		collected(fmt.Sprintf("%d files", len(files)))
		if err != nil {
			return fmt.Errorf("%s: %w", pass.Name(), err)
		}
		results, passErr = runPassWithUI(ctx, cmd.OutOrStdout(), pass.Name(), files, pass, opts)
	} else {
		results, passErr = driver.Run(ctx, args, pass, opts)
	}

	out := cmd.OutOrStdout()
	switch {
	case s.stdout:
		err = renderStdout(out, results)
	case s.format == "json":
		err = renderJSON(out, results, s.check)
	default:
		err = renderText(out, results, s.check, s.quiet)
	}
	if err != nil {
		return err
	}
	if opts.Timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), opts.Timer.Summary())
	}

	if passErr != nil {
		return fmt.Errorf("%s: %w", pass.Name(), passErr)
	}
	if s.check && anyChanged(results) {
		return fmt.Errorf("%s: changes required", pass.Name())
	}
	return nil
}

func anyChanged(results []driver.Result) bool {
	for _, res := range results {
		if res.Changed {
			return true
		}
	}
	return false
}
