package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity maps the tags used by report producers ("WARN", "warning",
// "ERROR", "INFO", ...) onto a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "INFO", "info", "Info":
		return SevInfo, true
	case "WARN", "WARNING", "warn", "warning", "Warning":
		return SevWarning, true
	case "ERROR", "error", "Error":
		return SevError, true
	}
	return SevWarning, false
}
