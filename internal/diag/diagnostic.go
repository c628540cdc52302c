package diag

import "fmt"

// Position points at a column of a line in a file.
type Position struct {
	Path   string
	Line   uint32 // 1-based
	Column uint32 // 1-based, 0 when unknown
}

func (p Position) String() string {
	if p.Column == 0 {
		return fmt.Sprintf("%s:%d", p.Path, p.Line)
	}
	return fmt.Sprintf("%s:%d:%d", p.Path, p.Line, p.Column)
}

// FixApplicability describes how confident the producer is in a fix.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	default:
		return "unknown"
	}
}

// TextEdit replaces bytes [Start, End) of one line.
type TextEdit struct {
	Path    string
	Line    uint32 // 1-based
	Start   uint32 // 0-based byte offset in the line, inclusive
	End     uint32 // exclusive
	NewText string
	OldText string // optional guard
}

type Fix struct {
	ID            string
	Title         string
	Applicability FixApplicability
	Edits         []TextEdit
	Thunk         FixThunk // optional lazy builder, see Resolve
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Position
	Fixes    []Fix
}
