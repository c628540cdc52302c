package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"jtidy/internal/driver"
	"jtidy/internal/ui"
)

type passOutcome struct {
	results []driver.Result
	err     error
}

// runPassWithUI runs the driver in the background and renders its events
// with the progress model until the run finishes.
func runPassWithUI(ctx context.Context, out io.Writer, title string, files []string, pass driver.Pass, opts driver.Options) ([]driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan passOutcome, 1)

	go func() {
		runOpts := opts
		runOpts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.RunFiles(ctx, files, pass, runOpts)
		outcomeCh <- passOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
