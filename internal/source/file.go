package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads a file from disk and splits it into lines.
func Load(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f := newFile(path, content, 0)
	f.Mode = info.Mode().Perm()
	return f, nil
}

// NewVirtual builds a file from memory (stdin, tests) with the FileVirtual flag.
func NewVirtual(name string, content []byte) *File {
	f := newFile(name, content, FileVirtual)
	f.Mode = 0o644
	return f
}

func newFile(path string, content []byte, flags FileFlags) *File {
	body, hadBOM := removeBOM(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	lines := SplitLines(body)
	for _, l := range lines {
		if l.EOL == "\r\n" {
			flags |= FileHasCRLF
			break
		}
	}
	return &File{
		Path:    normalizePath(path),
		Content: content,
		Lines:   lines,
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}
}

// Render joins lines back into bytes, restoring a stripped BOM.
func (f *File) Render(lines []Line) []byte {
	var buf bytes.Buffer
	buf.Grow(len(f.Content) + 16)
	if f.Flags&FileHadBOM != 0 {
		buf.Write(utf8BOM)
	}
	buf.Write(JoinLines(lines))
	return buf.Bytes()
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() uint32 {
	n, err := safecast.Conv[uint32](len(f.Lines))
	if err != nil {
		panic(fmt.Errorf("line count overflow: %w", err))
	}
	return n
}

// GetLine returns the line with the given 1-based number.
func (f *File) GetLine(lineNum uint32) (Line, bool) {
	if lineNum == 0 || lineNum > f.LineCount() {
		return Line{}, false
	}
	return f.Lines[lineNum-1], true
}

// FormatPath форматирует путь к файлу в зависимости от режима.
// mode: "absolute", "relative", "basename", "auto"
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
		return f.Path
	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
		return f.Path
	case "basename":
		return BaseName(f.Path)
	default:
		return f.Path
	}
}
