package fix

import (
	"testing"

	"jtidy/internal/diag"
)

func TestReplaceText(t *testing.T) {
	f := ReplaceText("drop blanks", "A.java", 3, 4, 7, "(", "  (", WithID("x"))
	if f.ID != "x" || f.Applicability != diag.FixApplicabilityAlwaysSafe {
		t.Errorf("options not applied: %+v", f)
	}
	if len(f.Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(f.Edits))
	}
	want := diag.TextEdit{Path: "A.java", Line: 3, Start: 4, End: 7, NewText: "(", OldText: "  ("}
	if f.Edits[0] != want {
		t.Errorf("edit = %+v, want %+v", f.Edits[0], want)
	}
}

func TestLazyResolvesThroughContext(t *testing.T) {
	f := Lazy("upper", func(ctx diag.FixBuildContext) (diag.Fix, error) {
		text, err := ctx.Line("A.java", 1)
		if err != nil {
			return diag.Fix{}, err
		}
		return ReplaceText("", "A.java", 1, 0, 1, "X", text[:1]), nil
	}, WithID("lazy"))
	if f.Thunk == nil || len(f.Edits) != 0 {
		t.Fatalf("expected an unresolved fix, got %+v", f)
	}

	ws := virtualWorkspace(t, "A.java", "abc\n")
	resolved, err := f.Resolve(ws.Context())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.ID != "lazy" || resolved.Title != "upper" || resolved.Thunk != nil {
		t.Errorf("unexpected metadata %+v", resolved)
	}
	if len(resolved.Edits) != 1 || resolved.Edits[0].OldText != "a" {
		t.Errorf("unexpected edits %+v", resolved.Edits)
	}
}

func TestNilOptionIsIgnored(t *testing.T) {
	f := Lazy("t", nil, nil, WithID("y"))
	if f.ID != "y" {
		t.Errorf("ID = %q", f.ID)
	}
}
