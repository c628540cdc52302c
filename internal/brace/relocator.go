package brace

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"jtidy/internal/source"
)

// ErrUnexpectedLine is returned when a line looks like "} keyword" but the
// closing brace is not followed by a separator.
var ErrUnexpectedLine = errors.New("closing brace is not followed by a separator")

// SplitError reports the line that broke the "} keyword" split.
type SplitError struct {
	Line int // 1-based
	Text string
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, ErrUnexpectedLine, e.Text)
}

func (e *SplitError) Unwrap() error {
	return ErrUnexpectedLine
}

// Stats counts the rewrites performed by a Relocator.
type Stats struct {
	Moved int // braces moved onto their own line
	Split int // "} keyword" lines split in two
}

// Relocator is the per-file state of the brace pass. A Relocator must not
// be reused across files.
type Relocator struct {
	owner      string // pending owner line
	hasOwner   bool
	methodDecl bool
	line       int
	stats      Stats
}

// New returns a Relocator with no pending owner.
func New() *Relocator {
	return &Relocator{}
}

// Relocate runs a fresh Relocator over lines.
func Relocate(lines []source.Line) ([]source.Line, error) {
	out, _, err := New().Run(lines)
	return out, err
}

// Run feeds every line to Step and collects the output.
func (r *Relocator) Run(lines []source.Line) ([]source.Line, Stats, error) {
	out := make([]source.Line, 0, len(lines)+len(lines)/4)
	for _, l := range lines {
		emitted, err := r.Step(l)
		if err != nil {
			return nil, r.stats, err
		}
		out = append(out, emitted...)
	}
	return out, r.stats, nil
}

// Stats returns the counters accumulated so far.
func (r *Relocator) Stats() Stats {
	return r.stats
}

// Step consumes one input line and returns the one to three lines it
// becomes.
func (r *Relocator) Step(l source.Line) ([]source.Line, error) {
	r.line++

	// generated lines always get a terminator
	eol := l.EOL
	if eol == "" {
		eol = "\n"
	}

	out := make([]source.Line, 0, 3)
	text, textEOL := l.Text, l.EOL
	fields := strings.Fields(text)

	// "} else {" и подобные
	if closesBeforeKeyword(text, fields) {
		indent, rest, ok := splitClosingBrace(text)
		if !ok {
			return nil, &SplitError{Line: r.line, Text: l.Text}
		}
		out = append(out, source.Line{Text: indent + "}", EOL: eol})
		text, textEOL = indent+rest, eol
		fields = strings.Fields(text)
		r.stats.Split++
	}

	if len(fields) > 0 && IsKeyword(firstWord(fields[0])) && !r.methodDecl {
		r.remember(text)
	}
	if looksLikeMethodDecl(text + textEOL) {
		r.remember(text)
		r.methodDecl = true
	}

	idx := trailingBrace(text)
	if idx < 0 {
		return append(out, source.Line{Text: text, EOL: textEOL}), nil
	}

	before := strings.TrimRightFunc(text[:idx], unicode.IsSpace)
	head := strings.TrimRightFunc(before+" "+text[idx+1:], unicode.IsSpace)
	indent := leadingBlanks(text)
	if r.hasOwner {
		indent = leadingBlanks(r.owner)
	}
	out = append(out,
		source.Line{Text: head, EOL: eol},
		source.Line{Text: indent + "{", EOL: eol},
	)
	r.owner, r.hasOwner = "", false
	r.methodDecl = false
	r.stats.Moved++
	return out, nil
}

func (r *Relocator) remember(text string) {
	r.owner, r.hasOwner = text, true
}

// closesBeforeKeyword matches lines such as "} else" and "} catch (E e) {",
// but not "} while (x);" which ends a do statement.
func closesBeforeKeyword(text string, fields []string) bool {
	if !strings.HasPrefix(strings.TrimLeft(text, " \t"), "}") {
		return false
	}
	return len(fields) > 1 && IsKeyword(fields[1]) && fields[1] != "while"
}

// splitClosingBrace cuts "<indent>}<sep><rest>" where sep is a single
// space, tab or '*'.
func splitClosingBrace(text string) (indent, rest string, ok bool) {
	indent = leadingBlanks(text)
	tail := text[len(indent):]
	if len(tail) < 2 || tail[0] != '}' || !strings.ContainsRune("\t *", rune(tail[1])) {
		return "", "", false
	}
	return indent, tail[2:], true
}

// looksLikeMethodDecl is true for lines that start with exactly two spaces
// and a non-blank character. s includes the line terminator.
func looksLikeMethodDecl(s string) bool {
	return len(s) > 2 && s[0] == ' ' && s[1] == ' ' && s[2] != ' ' && s[2] != '\t'
}

// trailingBrace returns the index of the '{' to relocate, or -1. The brace
// must follow a non-blank character and be followed only by blanks and an
// optional line or block comment. When several braces qualify the leftmost
// one wins.
func trailingBrace(text string) int {
	first := strings.IndexFunc(text, func(r rune) bool { return r != ' ' && r != '\t' })
	if first < 0 {
		return -1
	}
	for i := first + 1; i < len(text); i++ {
		if text[i] == '{' && commentOnly(text[i+1:]) {
			return i
		}
	}
	return -1
}

func commentOnly(s string) bool {
	s = strings.TrimLeft(s, " \t")
	return s == "" || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*")
}

func leadingBlanks(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
