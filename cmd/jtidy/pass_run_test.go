package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"jtidy/internal/driver"
)

func TestApplyManifestRespectsFlags(t *testing.T) {
	manifest := &projectManifest{Config: projectConfig{
		Files: filesConfig{Extensions: []string{".jav"}},
		Run:   runConfig{Jobs: 4, Cache: true},
	}}

	s := passSettings{jobs: 1, manifest: manifest}
	s.applyManifest(func(string) bool { return false })
	if s.jobs != 4 || !s.cache || len(s.extensions) != 1 || s.extensions[0] != ".jav" {
		t.Errorf("manifest values not applied: %+v", s)
	}

	s = passSettings{jobs: 2, extensions: []string{".java"}, manifest: manifest}
	s.applyManifest(func(name string) bool { return name == "jobs" || name == "ext" })
	if s.jobs != 2 || s.extensions[0] != ".java" {
		t.Errorf("flags were overridden: %+v", s)
	}
	if !s.cache {
		t.Error("cache from manifest should apply when the flag is unset")
	}
}

func TestPassSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings passSettings
		wantErr  string
	}{
		{"ok", passSettings{format: "text", jobs: 1}, ""},
		{"stdout and check", passSettings{format: "text", jobs: 1, stdout: true, check: true}, "--stdout cannot be used with --check"},
		{"stdout json", passSettings{format: "json", jobs: 1, stdout: true}, "only supported with text"},
		{"bad format", passSettings{format: "xml", jobs: 1}, "unsupported output format"},
		{"zero jobs", passSettings{format: "text"}, "--jobs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.validate("brace")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestPassSettingsNormalisesExtensions(t *testing.T) {
	s := passSettings{format: "text", jobs: 1, extensions: []string{"java", ".jav"}}
	if err := s.validate("brace"); err != nil {
		t.Fatal(err)
	}
	if s.extensions[0] != ".java" || s.extensions[1] != ".jav" {
		t.Errorf("unexpected extensions %v", s.extensions)
	}
}

func TestResolvePackageName(t *testing.T) {
	manifest := &projectManifest{Config: projectConfig{Package: packageConfig{Name: "mnj.lua"}}}

	if got, err := resolvePackageName("", manifest); err != nil || got != "mnj.lua" {
		t.Errorf("from manifest: %q, %v", got, err)
	}
	if got, err := resolvePackageName(" org.x ", manifest); err != nil || got != "org.x" {
		t.Errorf("flag wins: %q, %v", got, err)
	}
	if _, err := resolvePackageName("", nil); err == nil {
		t.Error("expected error without a name")
	}
	if _, err := resolvePackageName("a..b", nil); err == nil {
		t.Error("expected error for an invalid name")
	}
}

func TestRenderText(t *testing.T) {
	results := []driver.Result{
		{Path: "A.java", Changed: true, Edits: 3},
		{Path: "B.java"},
		{Path: "C.java", Cached: true},
		{Path: "D.java", Changed: true, Err: errors.New("boom")},
	}

	var buf bytes.Buffer
	if err := renderText(&buf, results, false, false); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "rewrote A.java (3 edits)\n"; got != want {
		t.Errorf("rewrite output %q, want %q", got, want)
	}

	buf.Reset()
	if err := renderText(&buf, results, true, true); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "A.java\n"; got != want {
		t.Errorf("check output %q, want %q", got, want)
	}

	buf.Reset()
	if err := renderText(&buf, results, false, true); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("quiet rewrite printed %q", buf.String())
	}
}

func TestRenderJSON(t *testing.T) {
	results := []driver.Result{
		{Path: "A.java", Changed: true, Edits: 2},
		{Path: "B.java", Err: errors.New("line 3: bad")},
	}
	var buf bytes.Buffer
	if err := renderJSON(&buf, results, true); err != nil {
		t.Fatal(err)
	}
	var decoded []jsonResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 || !decoded[0].Changed || !decoded[0].CheckRun || decoded[1].Error != "line 3: bad" {
		t.Errorf("unexpected payload %+v", decoded)
	}
}

func TestRenderStdoutSkipsFailures(t *testing.T) {
	results := []driver.Result{
		{Path: "A.java", Formatted: []byte("a\n")},
		{Path: "B.java", Err: errors.New("bad"), Formatted: []byte("b\n")},
	}
	var buf bytes.Buffer
	if err := renderStdout(&buf, results); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "a\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("expected error")
	}
	var buf bytes.Buffer
	if !uiModeOn.useTUI(&buf) || uiModeOff.useTUI(os.Stdout) {
		t.Error("explicit modes must win over terminal detection")
	}
	if uiModeAuto.useTUI(&buf) {
		t.Error("auto mode must not draw into a buffer")
	}
}
