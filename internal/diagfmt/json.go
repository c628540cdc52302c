package diagfmt

import (
	"encoding/json"
	"io"

	"jtidy/internal/diag"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File   string `json:"file"`
	Line   uint32 `json:"line"`
	Column uint32 `json:"column,omitempty"`
}

// FixEditJSON представляет одно редактирование для JSON
type FixEditJSON struct {
	Location LocationJSON `json:"location"`
	Start    uint32       `json:"start"`
	End      uint32       `json:"end"`
	NewText  string       `json:"new_text"`
	OldText  string       `json:"old_text,omitempty"`
	Before   string       `json:"before,omitempty"`
	After    string       `json:"after,omitempty"`
}

// FixJSON представляет предложение по исправлению для JSON
type FixJSON struct {
	ID            string        `json:"id,omitempty"`
	Title         string        `json:"title"`
	Applicability string        `json:"applicability"`
	BuildError    string        `json:"build_error,omitempty"`
	Edits         []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(pos diag.Position, mode PathMode, baseDir string) LocationJSON {
	return LocationJSON{
		File:   formatPath(pos.Path, mode, baseDir),
		Line:   pos.Line,
		Column: pos.Column,
	}
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
// Lazy fixes are resolved through ctx; a failed build is reported in the
// fix entry rather than returned.
func BuildDiagnosticsOutput(bag *diag.Bag, ctx diag.FixBuildContext, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for i := range maxItems {
		d := items[i]

		diagJSON := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, opts.PathMode, opts.BaseDir),
		}

		if opts.IncludeFixes && len(d.Fixes) > 0 {
			diagJSON.Fixes = make([]FixJSON, 0, len(d.Fixes))
			for _, fix := range d.Fixes {
				diagJSON.Fixes = append(diagJSON.Fixes, buildFixJSON(fix, ctx, opts))
			}
		}

		diagnostics = append(diagnostics, diagJSON)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

func buildFixJSON(fix diag.Fix, ctx diag.FixBuildContext, opts JSONOpts) FixJSON {
	out := FixJSON{
		ID:            fix.ID,
		Title:         fix.Title,
		Applicability: fix.Applicability.String(),
	}
	resolved := fix
	if fix.Thunk != nil {
		if ctx.Line == nil {
			return out
		}
		var err error
		resolved, err = fix.Resolve(ctx)
		if err != nil {
			out.BuildError = err.Error()
			return out
		}
	}
	for _, edit := range resolved.Edits {
		editJSON := FixEditJSON{
			Location: makeLocation(diag.Position{Path: edit.Path, Line: edit.Line, Column: edit.Start + 1}, opts.PathMode, opts.BaseDir),
			Start:    edit.Start,
			End:      edit.End,
			NewText:  edit.NewText,
			OldText:  edit.OldText,
		}
		if opts.IncludePreviews {
			if preview, err := buildFixEditPreview(ctx, edit); err == nil {
				editJSON.Before = preview.before
				editJSON.After = preview.after
			}
		}
		out.Edits = append(out.Edits, editJSON)
	}
	return out
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, bag *diag.Bag, ctx diag.FixBuildContext, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, ctx, opts))
}
