// Package pkgdecl inserts a package declaration into Java sources that were
// written without one.
package pkgdecl

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"jtidy/internal/brace"
	"jtidy/internal/source"
)

// ErrInvalidName is returned for names that are not dotted Java identifiers.
var ErrInvalidName = errors.New("invalid package name")

// ValidateName checks that name is a dotted sequence of Java identifiers.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	for _, seg := range strings.Split(name, ".") {
		if !isIdentifier(seg) {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		if brace.IsKeyword(seg) {
			return fmt.Errorf("%w: %q is a keyword", ErrInvalidName, seg)
		}
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// Declaration renders the statement inserted for name.
func Declaration(name string) string {
	return "package " + name + ";"
}

// Insert places the declaration right after the first empty line. It
// reports false, and returns lines untouched, when the file has no empty
// line or already declares a package.
func Insert(lines []source.Line, name string) ([]source.Line, bool) {
	for _, l := range lines {
		if declaresPackage(l.Text) {
			return lines, false
		}
	}
	for i, l := range lines {
		if l.Text != "" {
			continue
		}
		out := make([]source.Line, 0, len(lines)+1)
		out = append(out, lines[:i+1]...)
		out = append(out, source.Line{Text: Declaration(name), EOL: l.EOL})
		out = append(out, lines[i+1:]...)
		return out, true
	}
	return lines, false
}

func declaresPackage(text string) bool {
	rest, ok := strings.CutPrefix(strings.TrimSpace(text), "package")
	return ok && rest != "" && (rest[0] == ' ' || rest[0] == '\t')
}

// Pass adapts Insert to the file driver.
type Pass struct {
	Package string
}

// Name identifies the pass in traces and progress output.
func (Pass) Name() string { return "addpkg" }

// CacheKey keeps cache entries for different package names apart.
func (p Pass) CacheKey() string { return "addpkg:" + p.Package }

// Rewrite inserts the declaration into f.
func (p Pass) Rewrite(f *source.File) ([]source.Line, int, error) {
	out, ok := Insert(f.Lines, p.Package)
	if !ok {
		return f.Lines, 0, nil
	}
	return out, 1, nil
}
