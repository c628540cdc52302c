package diag

import "errors"

// ErrOutOfRange is returned by fix builders when a position does not exist
// in the file it names.
var ErrOutOfRange = errors.New("position out of range")

// ErrNotApplicable marks a fix that cannot be built for the current file
// contents. The fix engine skips such fixes instead of failing.
var ErrNotApplicable = errors.New("fix not applicable")

// FixBuildContext gives lazy fixes access to file contents.
type FixBuildContext struct {
	// Line returns the text of a 1-based line, without its terminator.
	Line func(path string, line uint32) (string, error)
}

// FixThunk builds a fix once the file it edits is available.
type FixThunk func(ctx FixBuildContext) (Fix, error)

// Resolve materialises a lazy fix. ID, Title and Applicability set on f win
// over the ones the thunk returns.
func (f Fix) Resolve(ctx FixBuildContext) (Fix, error) {
	if f.Thunk == nil {
		return f, nil
	}
	built, err := f.Thunk(ctx)
	if err != nil {
		return Fix{}, err
	}
	if f.ID != "" {
		built.ID = f.ID
	}
	if f.Title != "" {
		built.Title = f.Title
	}
	if f.Applicability != FixApplicabilityAlwaysSafe {
		built.Applicability = f.Applicability
	}
	built.Thunk = nil
	return built, nil
}
