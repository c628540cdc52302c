// Package diag defines the diagnostic model shared by the report parser and
// the fix engine.
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier with a stable string form.
//   - Message – the text of the finding.
//   - Primary – file, line and column the finding points at.
//   - Fixes – optional Fix records describing how to address it.
//
// A Fix carries an ID, a title, an Applicability level and the TextEdits to
// apply. TextEdit addresses a byte range inside one line; OldText is a guard
// the fix engine checks before applying the edit.
//
// Package diag does no IO. Parsing reports lives in internal/checkstyle,
// applying fixes in internal/fix.
package diag
