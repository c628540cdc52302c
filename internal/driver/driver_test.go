package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"jtidy/internal/brace"
	"jtidy/internal/cache"
	"jtidy/internal/observ"
	"jtidy/internal/pkgdecl"
	"jtidy/internal/trace"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "B.java"), "")
	writeFile(t, filepath.Join(dir, "a", "A.JAVA"), "")
	writeFile(t, filepath.Join(dir, "a", "notes.txt"), "")
	writeFile(t, filepath.Join(dir, ".git", "C.java"), "")
	extra := filepath.Join(dir, "Script.jav")
	writeFile(t, extra, "")

	files, err := Collect(context.Background(), []string{dir, extra, filepath.Join(dir, "b")}, nil)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "Script.jav"),
		filepath.Join(dir, "a", "A.JAVA"),
		filepath.Join(dir, "b", "B.java"),
	}
	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}

	txt, err := Collect(context.Background(), []string{dir}, []string{"txt"})
	if err != nil {
		t.Fatal(err)
	}
	if len(txt) != 1 || filepath.Base(txt[0]) != "notes.txt" {
		t.Errorf("unexpected files for txt: %v", txt)
	}
}

func TestCollectMissingPath(t *testing.T) {
	if _, err := Collect(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, nil); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestRunRewritesInPlace(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "A.java")
	b := filepath.Join(dir, "B.java")
	writeFile(t, a, "class A {\r\n}\r\n")
	writeFile(t, b, "class B\n{\n}\n")
	if err := os.Chmod(a, 0o600); err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	timer := observ.NewTimer()
	results, err := Run(context.Background(), []string{dir}, brace.Pass{}, Options{Progress: sink, Timer: timer, Jobs: 4})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(results) != 2 || !results[0].Changed || results[1].Changed {
		t.Fatalf("unexpected results %+v", results)
	}
	if results[0].Edits != 1 {
		t.Errorf("edits = %d", results[0].Edits)
	}
	if got, want := readFile(t, a), "class A\r\n{\r\n}\r\n"; got != want {
		t.Errorf("A.java = %q, want %q", got, want)
	}
	info, err := os.Stat(a)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v", info.Mode().Perm())
	}

	report := timer.Report()
	names := make([]string, 0, len(report.Phases))
	for _, p := range report.Phases {
		names = append(names, p.Name)
	}
	if len(names) != 3 || names[0] != "collect" || names[1] != "rewrite" || names[2] != "write" {
		t.Errorf("unexpected phases %v", names)
	}

	var queued, done int
	for _, ev := range sink.events {
		if ev.File == "" {
			continue
		}
		switch ev.Status {
		case StatusQueued:
			queued++
		case StatusDone:
			done++
		}
	}
	if queued != 2 || done != 2 {
		t.Errorf("queued=%d done=%d events=%+v", queued, done, sink.events)
	}
}

func TestRunCheckAndStdoutTouchNothing(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "A.java")
	writeFile(t, a, "if (x) {\n")

	results, err := Run(context.Background(), []string{a}, brace.Pass{}, Options{Check: true})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Changed || results[0].Formatted != nil {
		t.Errorf("check result %+v", results[0])
	}

	results, err = Run(context.Background(), []string{a}, brace.Pass{}, Options{Stdout: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(results[0].Formatted); got != "if (x)\n{\n" {
		t.Errorf("formatted = %q", got)
	}
	if got := readFile(t, a); got != "if (x) {\n" {
		t.Errorf("file modified: %q", got)
	}
}

func TestRunStopsAtFirstError(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "A.java")
	b := filepath.Join(dir, "B.java")
	c := filepath.Join(dir, "C.java")
	writeFile(t, a, "if (x) {\n")
	writeFile(t, b, "x;\n}) else {\n")
	writeFile(t, c, "if (y) {\n")

	results, err := Run(context.Background(), []string{dir}, brace.Pass{}, Options{})
	var splitErr *brace.SplitError
	if !errors.As(err, &splitErr) {
		t.Fatalf("expected *brace.SplitError, got %v", err)
	}
	if splitErr.Line != 2 {
		t.Errorf("line = %d", splitErr.Line)
	}
	if len(results) != 2 || results[1].Err == nil {
		t.Fatalf("unexpected results %+v", results)
	}
	if got := readFile(t, a); got != "if (x)\n{\n" {
		t.Errorf("A.java should have been rewritten before the failure, got %q", got)
	}
	if got := readFile(t, c); got != "if (y) {\n" {
		t.Errorf("C.java should not have been touched, got %q", got)
	}
}

func TestRunCache(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "src", "A.java")
	writeFile(t, a, "package x;\n\nclass A {}\n")
	dc, err := cache.OpenDir(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	pass := pkgdecl.Pass{Package: "mnj.lua"}

	first, err := Run(context.Background(), []string{a}, pass, Options{Cache: dc})
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Cached {
		t.Fatal("first run cannot be cached")
	}
	second, err := Run(context.Background(), []string{a}, pass, Options{Cache: dc, Stdout: true})
	if err != nil {
		t.Fatal(err)
	}
	if !second[0].Cached || string(second[0].Formatted) != readFile(t, a) {
		t.Errorf("unexpected second result %+v", second[0])
	}

	other, err := Run(context.Background(), []string{a}, pkgdecl.Pass{Package: "other"}, Options{Cache: dc})
	if err != nil {
		t.Fatal(err)
	}
	if other[0].Cached {
		t.Error("cache entries must be keyed by package name")
	}
}

func TestRunCacheSkipsOwnOutput(t *testing.T) {
	// "a { {" needs two brace runs to settle; with the cache the second
	// run trusts the first one's output.
	dir := t.TempDir()
	a := filepath.Join(dir, "A.java")
	writeFile(t, a, "a { {\n")
	dc, err := cache.OpenDir(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Run(context.Background(), []string{a}, brace.Pass{}, Options{Cache: dc}); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, a); got != "a {\n{\n" {
		t.Fatalf("first run wrote %q", got)
	}
	cached, err := Run(context.Background(), []string{a}, brace.Pass{}, Options{Cache: dc})
	if err != nil {
		t.Fatal(err)
	}
	if !cached[0].Cached || readFile(t, a) != "a {\n{\n" {
		t.Errorf("cached run: %+v, file %q", cached[0], readFile(t, a))
	}
	fresh, err := Run(context.Background(), []string{a}, brace.Pass{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !fresh[0].Changed || readFile(t, a) != "a\n{\n{\n" {
		t.Errorf("uncached run: %+v, file %q", fresh[0], readFile(t, a))
	}
}

func TestRunTraces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "A.java"), "class A {\n}\n")
	ring := trace.NewRingTracer(64, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)

	if _, err := Run(ctx, []string{dir}, brace.Pass{}, Options{Check: true}); err != nil {
		t.Fatal(err)
	}
	scopes := map[trace.Scope]int{}
	for _, ev := range ring.Snapshot() {
		scopes[ev.Scope]++
	}
	if scopes[trace.ScopeDriver] != 2 || scopes[trace.ScopePass] != 2 || scopes[trace.ScopeFile] != 2 {
		t.Errorf("unexpected scope counts %v", scopes)
	}
}

func TestRunNoFiles(t *testing.T) {
	_, err := Run(context.Background(), []string{t.TempDir()}, brace.Pass{}, Options{})
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunFiles(ctx, []string{"A.java"}, brace.Pass{}, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
