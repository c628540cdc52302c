package fix

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"jtidy/internal/diag"
)

// ErrNoFixes means the run ended without touching any line.
var ErrNoFixes = errors.New("no applicable fixes found")

// ErrOutOfRange is returned when a fix points past the end of its file or
// line. It aborts the whole run.
var ErrOutOfRange = diag.ErrOutOfRange

// ApplyMode picks which of the gathered fixes are applied.
type ApplyMode uint8

const (
	ApplyModeAll ApplyMode = iota
	ApplyModeOnce
	ApplyModeID
)

// ParseMode maps a CLI value to an ApplyMode.
func ParseMode(s string) (ApplyMode, error) {
	switch s {
	case "", "all":
		return ApplyModeAll, nil
	case "once":
		return ApplyModeOnce, nil
	case "id":
		return ApplyModeID, nil
	default:
		return ApplyModeAll, fmt.Errorf("unknown fix mode %q (want all, once or id)", s)
	}
}

// ApplyOptions: TargetID is only read in ApplyModeID.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	DryRun   bool // compute changes, write nothing
}

// AppliedFix is a fix whose edits all landed.
type AppliedFix struct {
	ID            string
	Title         string
	Code          diag.Code
	Message       string
	Applicability diag.FixApplicability
	Primary       diag.Position
	EditCount     int
}

// SkippedFix captures a skipped fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange is one file written (or, in a dry run, that would be).
type FileChange struct {
	Path      string
	EditCount int
}

// ApplyResult is filled as far as Apply got, including on error.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

type lineKey struct {
	path string
	line uint32
}

// Apply collects fixes from diagnostics, selects a subset according to opts,
// applies them to ws and flushes the touched files.
func Apply(ws *Workspace, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{Applied: []AppliedFix{}, Skipped: []SkippedFix{}, FileChanges: []FileChange{}}
	if ws == nil {
		return result, fmt.Errorf("fix: workspace is nil")
	}

	candidates, skips, err := gatherCandidates(ws.Context(), diagnostics)
	result.Skipped = append(result.Skipped, skips...)
	if err != nil {
		return result, err
	}
	slices.SortStableFunc(candidates, compareCandidates)

	selected, skips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, skips...)
	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	applied, skips, err := applyCandidates(ws, selected)
	result.Applied = append(result.Applied, applied...)
	result.Skipped = append(result.Skipped, skips...)
	switch {
	case err != nil:
		return result, err
	case len(applied) == 0:
		return result, ErrNoFixes
	}

	changes, err := ws.Flush(opts.DryRun)
	result.FileChanges = append(result.FileChanges, changes...)
	return result, err
}

// gatherCandidates materializes the fixes of every diagnostic. Fixes that
// report diag.ErrNotApplicable or carry no edits are skipped; any other
// build error (missing file, out-of-range position) is returned.
func gatherCandidates(ctx diag.FixBuildContext, diagnostics []diag.Diagnostic) ([]candidate, []SkippedFix, error) {
	var (
		cands []candidate
		skips []SkippedFix
		seen  = make(map[string]bool)
	)
	skip := func(f diag.Fix, reason string) {
		skips = append(skips, SkippedFix{ID: f.ID, Title: f.Title, Reason: reason})
	}
	for _, d := range diagnostics {
		for idx, f := range d.Fixes {
			resolved, err := f.Resolve(ctx)
			switch {
			case errors.Is(err, diag.ErrNotApplicable):
				skip(f, err.Error())
				continue
			case err != nil:
				return cands, skips, fmt.Errorf("%s: %w", d.Primary, err)
			case len(resolved.Edits) == 0:
				skip(resolved, "fix has no edits")
				continue
			}
			if resolved.ID == "" {
				resolved.ID = fmt.Sprintf("%s-%s-%d", d.Code.ID(), d.Primary, idx)
			}
			if seen[resolved.ID] {
				skip(resolved, "duplicate fix id")
				continue
			}
			seen[resolved.ID] = true
			cands = append(cands, candidate{diag: d, fix: resolved, order: len(cands)})
		}
	}
	return cands, skips, nil
}

// compareCandidates orders fixes by position, then by the order they were
// reported in.
func compareCandidates(a, b candidate) int {
	pa, pb := a.diag.Primary, b.diag.Primary
	return cmp.Or(
		cmp.Compare(pa.Path, pb.Path),
		cmp.Compare(pa.Line, pb.Line),
		cmp.Compare(pa.Column, pb.Column),
		cmp.Compare(a.order, b.order),
		cmp.Compare(a.fix.ID, b.fix.ID),
	)
}

// selectCandidates applies the mode. Only always-safe fixes go in
// automatically; ApplyModeOnce falls back to the first fix of any kind and
// ApplyModeID takes the named fix whatever its applicability.
func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	if len(candidates) == 0 {
		return nil, nil
	}
	safe := func(c candidate) bool { return c.fix.Applicability == diag.FixApplicabilityAlwaysSafe }

	switch opts.Mode {
	case ApplyModeID:
		i := slices.IndexFunc(candidates, func(c candidate) bool { return c.fix.ID == opts.TargetID })
		if i < 0 {
			return nil, []SkippedFix{{ID: opts.TargetID, Reason: "fix id not found"}}
		}
		return candidates[i : i+1], nil
	case ApplyModeOnce:
		if i := slices.IndexFunc(candidates, safe); i >= 0 {
			return candidates[i : i+1], nil
		}
		return candidates[:1], nil
	}

	var selected []candidate
	var skipped []SkippedFix
	for _, c := range candidates {
		if safe(c) {
			selected = append(selected, c)
			continue
		}
		skipped = append(skipped, SkippedFix{
			ID:     c.fix.ID,
			Title:  c.fix.Title,
			Reason: "applicability is " + c.fix.Applicability.String(),
		})
	}
	return selected, skipped
}

// applyCandidates applies each fix atomically: either all of its edits land
// or none do. Edit offsets are relative to the original line; edits
// applied earlier on the same line shift them through shiftAt.
func applyCandidates(ws *Workspace, selected []candidate) ([]AppliedFix, []SkippedFix, error) {
	appliedEdits := make(map[lineKey][]diag.TextEdit)

	var applied []AppliedFix
	var skipped []SkippedFix

	for _, cand := range selected {
		buckets := groupEditsByLine(cand.fix.Edits)
		staged := make(map[lineKey]string, len(buckets))
		stagedApplied := make(map[lineKey][]diag.TextEdit, len(buckets))
		var skipReason string

		for _, key := range sortedKeys(buckets) {
			edits := buckets[key]
			if conflictsWithExisting(appliedEdits[key], edits) {
				skipReason = fmt.Sprintf("conflicts with previously applied edits at %s:%d", key.path, key.line)
				break
			}
			text, err := ws.Line(key.path, key.line)
			if err != nil {
				return applied, skipped, err
			}

			// справа налево, чтобы смещения не съезжали
			slices.SortStableFunc(edits, func(a, b diag.TextEdit) int {
				return -compareSpans(a, b)
			})

			existing := append([]diag.TextEdit(nil), appliedEdits[key]...)
			for _, edit := range edits {
				start := int(edit.Start) + shiftAt(existing, int(edit.Start))
				end := int(edit.End) + shiftAt(existing, int(edit.End))
				if start < 0 || end < start || end > len(text) {
					return applied, skipped, fmt.Errorf("%s:%d: edit [%d,%d) on %d bytes: %w",
						key.path, key.line, edit.Start, edit.End, len(text), ErrOutOfRange)
				}
				if edit.OldText != "" && text[start:end] != edit.OldText {
					skipReason = "existing text does not match expected content"
					break
				}
				text = text[:start] + edit.NewText + text[end:]
				existing = insertSorted(existing, edit)
			}
			if skipReason != "" {
				break
			}
			staged[key] = text
			stagedApplied[key] = existing
		}

		if skipReason != "" {
			skipped = append(skipped, SkippedFix{
				ID:     cand.fix.ID,
				Title:  cand.fix.Title,
				Reason: skipReason,
			})
			continue
		}

		for key, text := range staged {
			ws.setLine(key.path, key.line, text)
			ws.markDirty(key.path, len(buckets[key]))
			appliedEdits[key] = stagedApplied[key]
		}

		applied = append(applied, AppliedFix{
			ID:            cand.fix.ID,
			Title:         cand.fix.Title,
			Code:          cand.diag.Code,
			Message:       cand.diag.Message,
			Applicability: cand.fix.Applicability,
			Primary:       cand.diag.Primary,
			EditCount:     len(cand.fix.Edits),
		})
	}
	return applied, skipped, nil
}

func conflictsWithExisting(existing, edits []diag.TextEdit) bool {
	for i, e := range edits {
		for _, other := range slices.Concat(existing, edits[i+1:]) {
			if spansConflict(e, other) {
				return true
			}
		}
	}
	return false
}

// spansConflict reports whether two edits of one line overlap as half-open
// byte ranges. Insertions only collide with a span strictly covering them.
func spansConflict(a, b diag.TextEdit) bool {
	switch aEmpty, bEmpty := a.Start == a.End, b.Start == b.End; {
	case aEmpty && bEmpty:
		return false
	case aEmpty:
		return b.Start <= a.Start && a.Start < b.End
	case bEmpty:
		return a.Start <= b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

func compareSpans(a, b diag.TextEdit) int {
	return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
}

func groupEditsByLine(edits []diag.TextEdit) map[lineKey][]diag.TextEdit {
	buckets := make(map[lineKey][]diag.TextEdit)
	for _, edit := range edits {
		key := lineKey{path: edit.Path, line: edit.Line}
		buckets[key] = append(buckets[key], edit)
	}
	return buckets
}

func sortedKeys(buckets map[lineKey][]diag.TextEdit) []lineKey {
	keys := make([]lineKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b lineKey) int {
		return cmp.Or(cmp.Compare(a.path, b.path), cmp.Compare(a.line, b.line))
	})
	return keys
}

// shiftAt is how far offset pos of the original line has moved after
// the applied edits (sorted by span) that end at or before it.
func shiftAt(applied []diag.TextEdit, pos int) int {
	shift := 0
	for _, e := range applied {
		if int(e.Start) > pos {
			break
		}
		if int(e.End) <= pos {
			shift += len(e.NewText) - int(e.End-e.Start)
		}
	}
	return shift
}

func insertSorted(applied []diag.TextEdit, edit diag.TextEdit) []diag.TextEdit {
	i, _ := slices.BinarySearchFunc(applied, edit, compareSpans)
	return slices.Insert(applied, i, edit)
}
