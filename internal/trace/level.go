package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity. Each level admits every scope up to
// and including its deepest one.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // run spans only; their end carries the error
	LevelPhase               // + pass spans
	LevelDetail              // + one span per file
	LevelDebug               // + per-line points
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// deepest scope admitted per level; 0 admits nothing
var levelDepth = [...]Scope{
	LevelOff:    0,
	LevelError:  ScopeDriver,
	LevelPhase:  ScopePass,
	LevelDetail: ScopeFile,
	LevelDebug:  ScopeLine,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel maps a flag value (case-insensitive) to a Level.
func ParseLevel(s string) (Level, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == want {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelDepth) {
		return false
	}
	return scope != 0 && scope <= levelDepth[l]
}
