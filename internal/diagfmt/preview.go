package diagfmt

import (
	"fmt"

	"jtidy/internal/diag"
)

type fixEditPreview struct {
	before string
	after  string
}

func buildFixEditPreview(ctx diag.FixBuildContext, edit diag.TextEdit) (fixEditPreview, error) {
	if ctx.Line == nil {
		return fixEditPreview{}, fmt.Errorf("no line source")
	}
	text, err := ctx.Line(edit.Path, edit.Line)
	if err != nil {
		return fixEditPreview{}, err
	}
	start, end := int(edit.Start), int(edit.End)
	if start > len(text) || end < start || end > len(text) {
		return fixEditPreview{}, fmt.Errorf("edit [%d,%d) out of range for preview line: %w", start, end, diag.ErrOutOfRange)
	}
	return fixEditPreview{
		before: text,
		after:  text[:start] + edit.NewText + text[end:],
	}, nil
}
