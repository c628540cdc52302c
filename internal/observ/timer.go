// Package observ measures the phases of a jtidy run for --timings.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one measured step of a run.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string // e.g. "12 files, 3 changed"
	// Nested phases were measured inside another phase and are left out
	// of the total.
	Nested bool
}

// Timer collects phases in the order they were started. A nil *Timer
// accepts every call and records nothing. Not safe for concurrent use:
// workers sum their own durations and report them through Add.
type Timer struct {
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4)} }

// Begin opens a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase opened by Begin. Unknown indexes are ignored.
func (t *Timer) End(idx int, note string) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Start is Begin returning its End as a closure.
func (t *Timer) Start(name string) func(note string) {
	idx := t.Begin(name)
	return func(note string) { t.End(idx, note) }
}

// Add records a nested phase whose duration was measured elsewhere, such
// as time summed over workers.
func (t *Timer) Add(name string, dur time.Duration, note string) {
	if t == nil {
		return
	}
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now().Add(-dur), Dur: dur, Note: note, Nested: true})
}

// Summary renders the phases as an aligned table for stderr.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		name := p.Name
		if p.Nested {
			name = "  " + name
		}
		fmt.Fprintf(&b, "  %-14s %8.2f ms", name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  (" + p.Note + ")")
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-14s %8.2f ms\n", "total", report.TotalMS)
	return b.String()
}

// PhaseReport — фаза в виде для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
	Nested     bool    `json:"nested,omitempty"`
}

// Report — все фазы и их сумма.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report lists the phases with durations in milliseconds. TotalMS sums
// the top-level phases only.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		report.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note, Nested: p.Nested}
		if !p.Nested {
			total += p.Dur
		}
	}
	report.TotalMS = millis(total)
	return report
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
