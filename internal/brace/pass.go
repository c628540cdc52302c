package brace

import "jtidy/internal/source"

// Pass adapts the relocator to the file driver. Each file gets its own
// Relocator, so no state leaks from one file into the next.
type Pass struct{}

// Name identifies the pass in traces, progress output and the cache.
func (Pass) Name() string { return "brace" }

// Rewrite relocates the braces of f and returns the new lines together
// with the number of rewrites.
func (Pass) Rewrite(f *source.File) ([]source.Line, int, error) {
	out, stats, err := New().Run(f.Lines)
	if err != nil {
		return nil, 0, err
	}
	return out, stats.Moved + stats.Split, nil
}
