package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"jtidy/internal/diag"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее) и печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// with the fix titles indented below when ShowFixes is set.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	for _, d := range bag.Items() {
		pos := d.Primary
		pos.Path = formatPath(pos.Path, opts.PathMode, opts.BaseDir)
		sev := d.Severity.String()
		if opts.Color {
			sev = severityColor(d.Severity).Sprint(sev)
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", pos, sev, d.Code.ID(), d.Message); err != nil {
			return err
		}
		if !opts.ShowFixes {
			continue
		}
		for _, f := range d.Fixes {
			title := f.Title
			if opts.Color {
				title = color.New(color.FgGreen).Sprint(title)
			}
			line := fmt.Sprintf("  fix: %s (%s)", title, f.Applicability)
			if f.ID != "" {
				line += " [" + f.ID + "]"
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func severityColor(s diag.Severity) *color.Color {
	c := color.New(color.Bold)
	switch s {
	case diag.SevError:
		c.Add(color.FgRed)
	case diag.SevWarning:
		c.Add(color.FgYellow)
	default:
		c.Add(color.FgCyan)
	}
	// вызывающий уже решил про цвет
	c.EnableColor()
	return c
}
