// Package ui renders driver progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"jtidy/internal/driver"
)

type fileState uint8

const (
	stateQueued fileState = iota
	stateRewriting
	stateWriting
	stateUnchanged
	stateChanged
	stateCached
	stateFailed
)

var stateLabels = [...]string{
	stateQueued:    "queued",
	stateRewriting: "rewriting",
	stateWriting:   "writing",
	stateUnchanged: "done",
	stateChanged:   "changed",
	stateCached:    "cached",
	stateFailed:    "error",
}

var stateColors = [...]lipgloss.Color{
	stateQueued:    "8",
	stateRewriting: "6",
	stateWriting:   "6",
	stateUnchanged: "2",
	stateChanged:   "3",
	stateCached:    "2",
	stateFailed:    "1",
}

func (s fileState) String() string { return stateLabels[s] }

func (s fileState) final() bool { return s >= stateUnchanged }

// weight is the share of a file's work done in this state.
func (s fileState) weight() float64 {
	switch {
	case s.final():
		return 1
	case s == stateWriting:
		return 0.8
	case s == stateRewriting:
		return 0.3
	}
	return 0
}

// maxRows bounds the file list; a large tree shows the busy and failed
// files and folds the rest into a counter.
const maxRows = 12

type fileRow struct {
	path  string
	state fileState
	err   string
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fileRow
	index   map[string]int
	runErr  string
	width   int
	done    bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model showing a driver run over
// files. It quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
		rows:    make([]fileRow, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, f := range files {
		m.rows[i] = fileRow{path: f}
		m.index[f] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// apply folds one driver event into the rows and returns the bar update.
func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Status == driver.StatusError && ev.Err != nil {
			m.runErr = ev.Err.Error()
		}
		return nil
	}
	i, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	row.state = stateFor(ev)
	if ev.Err != nil {
		row.err = ev.Err.Error()
	}
	return m.bar.SetPercent(m.fraction())
}

func stateFor(ev driver.Event) fileState {
	switch ev.Status {
	case driver.StatusWorking:
		if ev.Stage == driver.StageWrite {
			return stateWriting
		}
		return stateRewriting
	case driver.StatusDone:
		if ev.Changed {
			return stateChanged
		}
		return stateUnchanged
	case driver.StatusCached:
		return stateCached
	case driver.StatusError:
		return stateFailed
	}
	return stateQueued
}

func (m *progressModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range m.rows {
		sum += r.state.weight()
	}
	return sum / float64(len(m.rows))
}

func (m *progressModel) tally() (finished int, counts [len(stateLabels)]int) {
	for _, r := range m.rows {
		counts[r.state]++
		if r.state.final() {
			finished++
		}
	}
	return finished, counts
}

// visible picks the rows worth showing: failures, files in flight and
// changed files, in file order. With few files everything is shown.
func (m *progressModel) visible() (rows []fileRow, hidden int) {
	if len(m.rows) <= maxRows {
		return m.rows, 0
	}
	for _, r := range m.rows {
		interesting := r.state == stateFailed || r.state == stateChanged || (!r.state.final() && r.state != stateQueued)
		if interesting && len(rows) < maxRows {
			rows = append(rows, r)
		}
	}
	return rows, len(m.rows) - len(rows)
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	finished, counts := m.tally()

	var b strings.Builder
	head := fmt.Sprintf("%s %d/%d", m.title, finished, len(m.rows))
	if m.done {
		head = "done: " + head
	} else {
		head = m.spinner.View() + " " + head
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(head))
	b.WriteString("\n\n")

	pathWidth := max(m.width-16, 20)
	rows, hidden := m.visible()
	for _, r := range rows {
		label := lipgloss.NewStyle().Foreground(stateColors[r.state]).Render(fmt.Sprintf("%10s", r.state))
		b.WriteString("  " + label + "  " + shortenPath(r.path, pathWidth) + "\n")
		if r.err != "" {
			b.WriteString("              " + shortenPath(r.err, pathWidth) + "\n")
		}
	}
	if hidden > 0 {
		fmt.Fprintf(&b, "  %10s  %d more\n", "", hidden)
	}

	fmt.Fprintf(&b, "\n  changed %d  cached %d  failed %d\n", counts[stateChanged], counts[stateCached], counts[stateFailed])
	if m.runErr != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(stateColors[stateFailed]).Render("  "+m.runErr) + "\n")
	}
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// shortenPath keeps the tail of s within width cells. The file name is
// the part worth keeping in a deep source tree.
func shortenPath(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	runes := []rune(s)
	budget := width - 3
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if w > budget {
			break
		}
		budget -= w
		start--
	}
	return "..." + string(runes[start:])
}
