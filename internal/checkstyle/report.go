// Package checkstyle reads plain-text Checkstyle reports and turns the
// "'(' is preceded with whitespace" findings into diagnostics with fixes.
//
// A report line has the form
//
//	[WARN] src/Foo.java:12:17: '(' is preceded with whitespace. [MethodParamPad]
//
// where the severity tag is optional and the column is the 1-based column
// of the '(' character. Other findings are ignored.
package checkstyle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"jtidy/internal/diag"
)

// ParenPadMessage is the Checkstyle message this package handles.
const ParenPadMessage = "'(' is preceded with whitespace"

// ErrMalformed is wrapped by ParseError.
var ErrMalformed = errors.New("malformed report line")

// ParseError reports a report line that carries the handled message but no
// usable position.
type ParseError struct {
	Line   int // 1-based line of the report
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("report line %d: %v: %s: %q", e.Line, ErrMalformed, e.Reason, e.Text)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// Diagnostic reports the bad line as a finding against the report itself.
func (e *ParseError) Diagnostic(report string) diag.Diagnostic {
	line, err := safecast.Conv[uint32](e.Line)
	if err != nil {
		line = 0
	}
	return diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.ReportMalformed,
		Message:  fmt.Sprintf("%v: %s: %q", ErrMalformed, e.Reason, e.Text),
		Primary:  diag.Position{Path: report, Line: line},
	}
}

// Options configures report parsing.
type Options struct {
	// Root is joined to relative paths found in the report.
	Root string
	// Reporter receives every diagnostic as it is parsed (optional).
	Reporter diag.Reporter
	// KeepMalformed turns malformed lines into ReportMalformed diagnostics
	// positioned in ReportName instead of stopping at the first one.
	KeepMalformed bool
	ReportName    string
}

// ParseReport reads a report and returns one diagnostic per handled
// finding, in report order. A malformed line stops parsing with a
// *ParseError unless opts.KeepMalformed is set. A UTF-8 or UTF-16
// byte-order mark is honoured.
func ParseReport(r io.Reader, opts Options) ([]diag.Diagnostic, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	sc := bufio.NewScanner(decoded)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var out []diag.Diagnostic
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := strings.TrimRight(sc.Text(), "\r")
		if !strings.Contains(text, ParenPadMessage) {
			continue
		}
		d, perr := parseLine(text, opts.Root)
		if perr != nil {
			perr.Line = lineNo
			if !opts.KeepMalformed {
				return out, perr
			}
			d = perr.Diagnostic(opts.ReportName)
		}
		if opts.Reporter != nil {
			opts.Reporter.Report(d)
		}
		out = append(out, d)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read report: %w", err)
	}
	return out, nil
}

func parseLine(text, root string) (diag.Diagnostic, *ParseError) {
	fail := func(reason string) (diag.Diagnostic, *ParseError) {
		return diag.Diagnostic{}, &ParseError{Text: text, Reason: reason}
	}

	sev := diag.SevWarning
	rest := strings.TrimLeft(text, " \t")
	if strings.HasPrefix(rest, "[") {
		if end := strings.IndexByte(rest, ']'); end > 0 {
			if s, ok := diag.ParseSeverity(rest[1:end]); ok {
				sev = s
				rest = strings.TrimLeft(rest[end+1:], " \t")
			}
		}
	}

	path, rest, ok := cutPath(rest)
	if !ok || path == "" {
		return fail("missing path")
	}
	lineField, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return fail("missing line number")
	}
	colField, _, ok := strings.Cut(rest, ":")
	if !ok {
		return fail("missing column")
	}

	line, err := parsePositive(lineField)
	if err != nil {
		return fail("line: " + err.Error())
	}
	col, err := parsePositive(colField)
	if err != nil {
		return fail("column: " + err.Error())
	}

	if root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	pos := diag.Position{Path: path, Line: line, Column: col}
	return diag.Diagnostic{
		Severity: sev,
		Code:     diag.StyleParenPad,
		Message:  ParenPadMessage,
		Primary:  pos,
		Fixes:    []diag.Fix{ParenPadFix(pos)},
	}, nil
}

// cutPath splits "path:rest" at the first colon, stepping over a Windows
// drive letter.
func cutPath(s string) (path, rest string, ok bool) {
	skip := 0
	if len(s) > 2 && isASCIILetter(s[0]) && s[1] == ':' && (s[2] == '\\' || s[2] == '/') {
		skip = 2
	}
	i := strings.IndexByte(s[skip:], ':')
	if i < 0 {
		return "", "", false
	}
	return s[:skip+i], s[skip+i+1:], true
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func parsePositive(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, errors.New("must be positive")
	}
	return v, nil
}
