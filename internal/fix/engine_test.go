package fix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jtidy/internal/diag"
	"jtidy/internal/source"
)

// padFix removes the blanks in front of the '(' at col, resolving lazily.
func padFix(path string, line, col uint32) diag.Fix {
	return Lazy("remove space", func(ctx diag.FixBuildContext) (diag.Fix, error) {
		text, err := ctx.Line(path, line)
		if err != nil {
			return diag.Fix{}, err
		}
		idx := int(col) - 1
		if idx >= len(text) {
			return diag.Fix{}, fmt.Errorf("column %d: %w", col, diag.ErrOutOfRange)
		}
		if text[idx] != '(' {
			return diag.Fix{}, fmt.Errorf("column %d: %w", col, diag.ErrNotApplicable)
		}
		start := len(strings.TrimRight(text[:idx], " \t"))
		if start == idx {
			return diag.Fix{}, nil
		}
		return ReplaceText("remove space", path, line, uint32(start), col, "(", text[start:idx+1]), nil
	}, WithID(fmt.Sprintf("pad:%d:%d", line, col)))
}

func padDiag(path string, line, col uint32) diag.Diagnostic {
	return diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.StyleParenPad,
		Message:  "'(' is preceded with whitespace.",
		Primary:  diag.Position{Path: path, Line: line, Column: col},
		Fixes:    []diag.Fix{padFix(path, line, col)},
	}
}

func virtualWorkspace(t *testing.T, path, content string) *Workspace {
	t.Helper()
	ws := NewWorkspace("")
	ws.Add(source.NewVirtual(path, []byte(content)))
	return ws
}

func contents(t *testing.T, ws *Workspace, path string) string {
	t.Helper()
	data, ok := ws.Contents(path)
	if !ok {
		t.Fatalf("%s not loaded", path)
	}
	return string(data)
}

func TestApplySeveralFixesOnOneLine(t *testing.T) {
	ws := virtualWorkspace(t, "A.java", "class A {\n  f (a, g  (b));\n}\n")
	diags := []diag.Diagnostic{padDiag("A.java", 2, 12), padDiag("A.java", 2, 5)}

	res, err := Apply(ws, diags, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got, want := contents(t, ws, "A.java"), "class A {\n  f(a, g(b));\n}\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(res.Applied) != 2 {
		t.Errorf("expected 2 applied fixes, got %d", len(res.Applied))
	}
	if len(res.FileChanges) != 1 || res.FileChanges[0].EditCount != 2 {
		t.Errorf("unexpected file changes %+v", res.FileChanges)
	}
}

func TestApplyModeOnce(t *testing.T) {
	ws := virtualWorkspace(t, "A.java", "f (a);\ng (b);\n")
	diags := []diag.Diagnostic{padDiag("A.java", 2, 3), padDiag("A.java", 1, 3)}

	res, err := Apply(ws, diags, ApplyOptions{Mode: ApplyModeOnce})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got, want := contents(t, ws, "A.java"), "f(a);\ng (b);\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(res.Applied) != 1 || res.Applied[0].Primary.Line != 1 {
		t.Errorf("unexpected applied %+v", res.Applied)
	}
}

func TestApplyModeID(t *testing.T) {
	ws := virtualWorkspace(t, "A.java", "f (a);\ng (b);\n")
	diags := []diag.Diagnostic{padDiag("A.java", 1, 3), padDiag("A.java", 2, 3)}

	if _, err := Apply(ws, diags, ApplyOptions{Mode: ApplyModeID, TargetID: "pad:2:3"}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got, want := contents(t, ws, "A.java"), "f (a);\ng(b);\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	res, err := Apply(ws, diags, ApplyOptions{Mode: ApplyModeID, TargetID: "missing"})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(res.Skipped) == 0 || res.Skipped[len(res.Skipped)-1].Reason != "fix id not found" {
		t.Errorf("unexpected skips %+v", res.Skipped)
	}
}

func TestApplySkipsNonParenColumn(t *testing.T) {
	ws := virtualWorkspace(t, "A.java", "f (a);\n")
	res, err := Apply(ws, []diag.Diagnostic{padDiag("A.java", 1, 1)}, ApplyOptions{})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("expected 1 skip, got %+v", res.Skipped)
	}
	if got := contents(t, ws, "A.java"); got != "f (a);\n" {
		t.Errorf("file changed: %q", got)
	}
}

func TestApplyOutOfRangeIsFatal(t *testing.T) {
	tests := []struct {
		name string
		d    diag.Diagnostic
	}{
		{"line past end", padDiag("A.java", 5, 1)},
		{"column past end", padDiag("A.java", 1, 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := virtualWorkspace(t, "A.java", "f (a);\n")
			_, err := Apply(ws, []diag.Diagnostic{padDiag("A.java", 1, 3), tt.d}, ApplyOptions{})
			if !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("expected ErrOutOfRange, got %v", err)
			}
			if got := contents(t, ws, "A.java"); got != "f (a);\n" {
				t.Errorf("file changed on fatal error: %q", got)
			}
		})
	}
}

func TestApplyMissingFileIsFatal(t *testing.T) {
	ws := NewWorkspace("")
	missing := filepath.Join(t.TempDir(), "Gone.java")
	_, err := Apply(ws, []diag.Diagnostic{padDiag(missing, 1, 2)}, ApplyOptions{})
	if err == nil || errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected load error, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestApplyWritesFilesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "B.java")
	if err := os.WriteFile(path, []byte("x = g (1);\r\ny = h\t(2);\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ws := NewWorkspace(dir)
	res, err := Apply(ws, []diag.Diagnostic{padDiag(path, 1, 7), padDiag(path, 2, 7)}, ApplyOptions{})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "x = g(1);\r\ny = h(2);\r\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode changed to %v", info.Mode().Perm())
	}
	if len(res.FileChanges) != 1 || res.FileChanges[0].Path != "B.java" {
		t.Errorf("unexpected file changes %+v", res.FileChanges)
	}
}

func TestApplyDryRunLeavesDiskAlone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "C.java")
	if err := os.WriteFile(path, []byte("f (a);\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ws := NewWorkspace(dir)
	res, err := Apply(ws, []diag.Diagnostic{padDiag(path, 1, 3)}, ApplyOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "f (a);\n" {
		t.Errorf("dry run wrote %q", data)
	}
	if len(res.FileChanges) != 1 {
		t.Errorf("expected dry run to report 1 change, got %+v", res.FileChanges)
	}
}

func TestGatherCandidatesSkipsDuplicateFixIDs(t *testing.T) {
	edit := diag.TextEdit{Path: "A.java", Line: 1, Start: 0, End: 0, NewText: ";"}
	diagnostics := []diag.Diagnostic{{
		Code:    diag.StyleParenPad,
		Message: "missing semicolon",
		Primary: diag.Position{Path: "A.java", Line: 1, Column: 1},
		Fixes: []diag.Fix{
			{ID: "fix-duplicate", Title: "insert semicolon", Edits: []diag.TextEdit{edit}},
			{ID: "fix-duplicate", Title: "insert semicolon again", Edits: []diag.TextEdit{edit}},
		},
	}}

	candidates, skips, err := gatherCandidates(diag.FixBuildContext{}, diagnostics)
	if err != nil {
		t.Fatalf("gatherCandidates returned error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if len(skips) != 1 || skips[0].Reason != "duplicate fix id" {
		t.Fatalf("unexpected skips %+v", skips)
	}
}

func TestConflictingFixIsSkipped(t *testing.T) {
	ws := virtualWorkspace(t, "A.java", "abcdef\n")
	d := diag.Diagnostic{
		Code:    diag.StyleParenPad,
		Primary: diag.Position{Path: "A.java", Line: 1, Column: 1},
		Fixes: []diag.Fix{
			ReplaceText("first", "A.java", 1, 1, 4, "X", "bcd", WithID("first")),
			ReplaceText("second", "A.java", 1, 2, 5, "Y", "cde", WithID("second")),
		},
	}
	res, err := Apply(ws, []diag.Diagnostic{d}, ApplyOptions{})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got := contents(t, ws, "A.java"); got != "aXef\n" {
		t.Errorf("got %q", got)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != "second" {
		t.Errorf("unexpected skips %+v", res.Skipped)
	}
}

func TestSpansConflict(t *testing.T) {
	e := func(s, e uint32) diag.TextEdit { return diag.TextEdit{Start: s, End: e} }
	tests := []struct {
		a, b diag.TextEdit
		want bool
	}{
		{e(0, 0), e(0, 0), false},
		{e(2, 2), e(1, 3), true},
		{e(3, 3), e(1, 3), false},
		{e(1, 4), e(4, 6), false},
		{e(1, 5), e(4, 6), true},
	}
	for _, tt := range tests {
		if got := spansConflict(tt.a, tt.b); got != tt.want {
			t.Errorf("spansConflict(%+v, %+v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]ApplyMode{"": ApplyModeAll, "all": ApplyModeAll, "once": ApplyModeOnce, "id": ApplyModeID} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("some"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
