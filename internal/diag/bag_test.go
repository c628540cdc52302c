package diag

import "testing"

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	for i := 0; i < 3; i++ {
		b.Add(Diagnostic{Code: StyleParenPad, Primary: Position{Path: "A.java", Line: uint32(i + 1)}})
	}
	if b.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", b.Len())
	}

	unlimited := NewBag(0)
	for i := 0; i < 300; i++ {
		unlimited.Add(Diagnostic{})
	}
	if unlimited.Len() != 300 {
		t.Fatalf("expected 300 diagnostics, got %d", unlimited.Len())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(Diagnostic{Code: StyleParenPad, Primary: Position{Path: "B.java", Line: 1, Column: 4}})
	b.Add(Diagnostic{Code: StyleParenPad, Primary: Position{Path: "A.java", Line: 9, Column: 2}})
	b.Add(Diagnostic{Code: StyleParenPad, Primary: Position{Path: "A.java", Line: 3, Column: 7}})
	b.Add(Diagnostic{Code: StyleParenPad, Primary: Position{Path: "A.java", Line: 3, Column: 7}})

	b.Sort()
	b.Dedup()

	want := []string{"A.java:3:7", "A.java:9:2", "B.java:1:4"}
	if b.Len() != len(want) {
		t.Fatalf("expected %d diagnostics, got %d", len(want), b.Len())
	}
	for i, d := range b.Items() {
		if d.Primary.String() != want[i] {
			t.Errorf("item %d: got %s, want %s", i, d.Primary, want[i])
		}
	}
}

func TestBagHasErrorsAndFilter(t *testing.T) {
	b := NewBag(0)
	b.Add(Diagnostic{Severity: SevWarning, Code: StyleParenPad})
	b.Add(Diagnostic{Severity: SevError, Code: ReportMalformed})
	if !b.HasErrors() {
		t.Fatal("expected HasErrors")
	}
	b.Filter(func(d Diagnostic) bool { return d.Code == StyleParenPad })
	if b.HasErrors() || b.Len() != 1 {
		t.Fatalf("unexpected bag after filter: %+v", b.Items())
	}
}

func TestCodeID(t *testing.T) {
	if got := StyleParenPad.ID(); got != "S1001" {
		t.Errorf("StyleParenPad.ID() = %q", got)
	}
	if got := ReportMalformed.ID(); got != "R2001" {
		t.Errorf("ReportMalformed.ID() = %q", got)
	}
	if got := Code(42).String(); got != "CODE_42" {
		t.Errorf("Code(42).String() = %q", got)
	}
}

func TestParseSeverity(t *testing.T) {
	if s, ok := ParseSeverity("WARN"); !ok || s != SevWarning {
		t.Errorf("WARN -> %v, %v", s, ok)
	}
	if s, ok := ParseSeverity("ERROR"); !ok || s != SevError {
		t.Errorf("ERROR -> %v, %v", s, ok)
	}
	if _, ok := ParseSeverity("AUDIT"); ok {
		t.Error("AUDIT should not parse")
	}
}
