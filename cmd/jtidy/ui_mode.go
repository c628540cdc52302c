package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// uiMode is the --ui setting: "auto" shows the progress view only on an
// interactive terminal.
type uiMode uint8

const (
	uiModeAuto uiMode = iota
	uiModeOn
	uiModeOff
)

var uiModeNames = [...]string{uiModeAuto: "auto", uiModeOn: "on", uiModeOff: "off"}

func (m uiMode) String() string { return uiModeNames[m] }

func readUIMode(value string) (uiMode, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return uiModeAuto, nil
	}
	for m, name := range uiModeNames {
		if name == v {
			return uiMode(m), nil
		}
	}
	return uiModeAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// useTUI decides for output going to out. A dumb terminal gets plain text
// even in auto mode.
func (m uiMode) useTUI(out io.Writer) bool {
	switch m {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	f, ok := out.(*os.File)
	return ok && isTerminal(f) && os.Getenv("TERM") != "dumb"
}
