package diag

import "fmt"

type Code uint16

const (
	// Checkstyle findings
	StyleParenPad Code = 1001 // '(' is preceded with whitespace

	// Report problems
	ReportMalformed Code = 2001
)

var codeName = map[Code]string{
	StyleParenPad:   "STYLE_PAREN_PAD",
	ReportMalformed: "REPORT_MALFORMED",
}

// ID returns the short stable identifier, e.g. "S1001".
func (c Code) ID() string {
	switch {
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("S%04d", uint16(c))
	case c >= 2000 && c < 3000:
		return fmt.Sprintf("R%04d", uint16(c))
	default:
		return "E0000"
	}
}

func (c Code) String() string {
	if name, ok := codeName[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE_%d", uint16(c))
}
