package checkstyle

import (
	"fmt"
	"strings"
	"unicode"

	"fortio.org/safecast"

	"jtidy/internal/diag"
	"jtidy/internal/fix"
)

// ErrNotParen is returned when the reported column does not hold '('.
var ErrNotParen = fmt.Errorf("reported column does not hold '(': %w", diag.ErrNotApplicable)

const parenPadTitle = "remove whitespace before '('"

// ParenPadFix returns a lazy fix that deletes the whitespace run in front of
// the '(' at pos.
func ParenPadFix(pos diag.Position) diag.Fix {
	return fix.Lazy(parenPadTitle, func(ctx diag.FixBuildContext) (diag.Fix, error) {
		text, err := ctx.Line(pos.Path, pos.Line)
		if err != nil {
			return diag.Fix{}, err
		}
		edit, ok, err := parenPadEdit(pos, text)
		if err != nil {
			return diag.Fix{}, err
		}
		if !ok {
			return diag.Fix{Title: parenPadTitle}, nil
		}
		return fix.ReplaceText(parenPadTitle, edit.Path, edit.Line, edit.Start, edit.End, edit.NewText, edit.OldText), nil
	}, fix.WithID(fmt.Sprintf("paren-pad:%s:%d:%d", pos.Path, pos.Line, pos.Column)))
}

// parenPadEdit builds the edit for one line. ok is false when there is no
// whitespace to remove.
func parenPadEdit(pos diag.Position, text string) (diag.TextEdit, bool, error) {
	idx := int(pos.Column) - 1
	if idx < 0 || idx >= len(text) {
		return diag.TextEdit{}, false, fmt.Errorf("%s: column %d past end of line (%d bytes): %w", pos, pos.Column, len(text), diag.ErrOutOfRange)
	}
	if text[idx] != '(' {
		return diag.TextEdit{}, false, fmt.Errorf("%s: %w", pos, ErrNotParen)
	}
	start := len(strings.TrimRightFunc(text[:idx], unicode.IsSpace))
	if start == idx {
		return diag.TextEdit{}, false, nil
	}
	start32, err := safecast.Conv[uint32](start)
	if err != nil {
		return diag.TextEdit{}, false, err
	}
	end32, err := safecast.Conv[uint32](idx + 1)
	if err != nil {
		return diag.TextEdit{}, false, err
	}
	return diag.TextEdit{
		Path:    pos.Path,
		Line:    pos.Line,
		Start:   start32,
		End:     end32,
		NewText: "(",
		OldText: text[start : idx+1],
	}, true, nil
}
