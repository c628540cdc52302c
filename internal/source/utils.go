package source

import (
	"bytes"
	"path/filepath"
	"strings"
)

// SplitLines cuts content into lines, keeping "\n" and "\r\n" terminators
// apart from the text. A lone "\r" is ordinary text.
func SplitLines(content []byte) []Line {
	if len(content) == 0 {
		return nil
	}
	out := make([]Line, 0, bytes.Count(content, []byte{'\n'})+1)
	for len(content) > 0 {
		i := bytes.IndexByte(content, '\n')
		if i < 0 {
			out = append(out, Line{Text: string(content)})
			break
		}
		text, eol := content[:i], "\n"
		if i > 0 && content[i-1] == '\r' {
			text, eol = content[:i-1], "\r\n"
		}
		out = append(out, Line{Text: string(text), EOL: eol})
		content = content[i+1:]
	}
	return out
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []Line) []byte {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Text)
		b.WriteString(l.EOL)
	}
	return []byte(b.String())
}

func removeBOM(content []byte) ([]byte, bool) {
	if bytes.HasPrefix(content, utf8BOM) {
		return content[len(utf8BOM):], true
	}
	return content, false
}

// AbsolutePath returns a cleaned, slash-separated absolute path.
func AbsolutePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return normalizePath(abs), nil
}

// RelativePath returns p relative to baseDir. Paths outside baseDir fall
// back to their absolute form.
func RelativePath(p, baseDir string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(abs), nil
	}
	return normalizePath(rel), nil
}

// BaseName returns the last path element.
func BaseName(p string) string {
	return filepath.Base(p)
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
