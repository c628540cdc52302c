package source

import "io/fs"

// FileFlags encodes metadata about a source file.
type FileFlags uint8

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // не с диска (тест, stdin)
	// FileHadBOM records that a UTF-8 byte-order mark was stripped on load.
	FileHadBOM
	// FileHasCRLF records that at least one line ends with "\r\n".
	FileHasCRLF
)

// Line is one physical line of a file. Text never contains the terminator.
type Line struct {
	Text string
	EOL  string // "\n", "\r\n" or "" for an unterminated final line
}

// String returns the line with its terminator.
func (l Line) String() string {
	return l.Text + l.EOL
}

// File captures the content of a single source file split into lines.
type File struct {
	Path    string
	Content []byte // original bytes, BOM included
	Lines   []Line
	Hash    [32]byte
	Mode    fs.FileMode
	Flags   FileFlags
}
