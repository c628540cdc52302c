package fix

import "jtidy/internal/diag"

// Option mutates fix during construction.
type Option func(*diag.Fix)

// WithID sets stable identifier for fix.
func WithID(id string) Option {
	return func(f *diag.Fix) {
		f.ID = id
	}
}

func applyOptions(f diag.Fix, opts []Option) diag.Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// ReplaceText creates a fix replacing bytes [start, end) of a line with
// newText. guard, when non-empty, must match the replaced bytes.
func ReplaceText(title, path string, line, start, end uint32, newText, guard string, opts ...Option) diag.Fix {
	fix := diag.Fix{
		Title:         title,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits: []diag.TextEdit{{
			Path:    path,
			Line:    line,
			Start:   start,
			End:     end,
			NewText: newText,
			OldText: guard,
		}},
	}
	return applyOptions(fix, opts)
}

// Lazy creates a fix whose edits are built by thunk once the target file
// has been loaded.
func Lazy(title string, thunk diag.FixThunk, opts ...Option) diag.Fix {
	fix := diag.Fix{
		Title:         title,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Thunk:         thunk,
	}
	return applyOptions(fix, opts)
}
