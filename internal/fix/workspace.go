package fix

import (
	"fmt"
	"path/filepath"
	"sort"

	"jtidy/internal/diag"
	"jtidy/internal/source"
)

// Workspace loads target files on demand and keeps the edited lines until
// they are flushed.
type Workspace struct {
	baseDir string
	files   map[string]*source.File
	lines   map[string][]source.Line
	dirty   map[string]int
}

// NewWorkspace returns an empty workspace. baseDir is used only to format
// paths in results.
func NewWorkspace(baseDir string) *Workspace {
	return &Workspace{
		baseDir: baseDir,
		files:   make(map[string]*source.File),
		lines:   make(map[string][]source.Line),
		dirty:   make(map[string]int),
	}
}

// Add registers an in-memory file, replacing any loaded copy.
func (w *Workspace) Add(f *source.File) {
	key := filepath.Clean(f.Path)
	w.files[key] = f
	w.lines[key] = append([]source.Line(nil), f.Lines...)
}

// File returns the file at path, loading it on first use.
func (w *Workspace) File(path string) (*source.File, error) {
	key := filepath.Clean(path)
	if f, ok := w.files[key]; ok {
		return f, nil
	}
	f, err := source.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	w.Add(f)
	return f, nil
}

// Line returns the current text of a 1-based line.
func (w *Workspace) Line(path string, line uint32) (string, error) {
	if _, err := w.File(path); err != nil {
		return "", err
	}
	lines := w.lines[filepath.Clean(path)]
	if line == 0 || int(line) > len(lines) {
		return "", fmt.Errorf("%s:%d: file has %d lines: %w", path, line, len(lines), diag.ErrOutOfRange)
	}
	return lines[line-1].Text, nil
}

// Context exposes the workspace to lazy fixes.
func (w *Workspace) Context() diag.FixBuildContext {
	return diag.FixBuildContext{Line: w.Line}
}

func (w *Workspace) setLine(path string, line uint32, text string) {
	key := filepath.Clean(path)
	w.lines[key][line-1].Text = text
}

func (w *Workspace) markDirty(path string, edits int) {
	w.dirty[filepath.Clean(path)] += edits
}

// Contents renders the current state of a loaded file.
func (w *Workspace) Contents(path string) ([]byte, bool) {
	key := filepath.Clean(path)
	f, ok := w.files[key]
	if !ok {
		return nil, false
	}
	return f.Render(w.lines[key]), true
}

// Flush writes every modified file atomically, in path order. Virtual files
// are reported but never written.
func (w *Workspace) Flush(dryRun bool) ([]FileChange, error) {
	keys := make([]string, 0, len(w.dirty))
	for key := range w.dirty {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	changes := make([]FileChange, 0, len(keys))
	for _, key := range keys {
		f := w.files[key]
		if !dryRun && f.Flags&source.FileVirtual == 0 {
			if err := source.WriteAtomic(f.Path, f.Render(w.lines[key]), f.Mode); err != nil {
				return changes, fmt.Errorf("write %s: %w", f.Path, err)
			}
		}
		changes = append(changes, FileChange{
			Path:      f.FormatPath("relative", w.baseDir),
			EditCount: w.dirty[key],
		})
	}
	return changes, nil
}
