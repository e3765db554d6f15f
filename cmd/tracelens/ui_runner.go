package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tracelens/internal/analysis"
	"tracelens/internal/ui"
)

type runOutcome struct {
	result *analysis.Result
	err    error
}

// runAnalysisWithUI runs the analysis in the background while a progress
// view renders its stage events.
func runAnalysisWithUI(ctx context.Context, title string, traceData, typesData []byte, opts analysis.Options) (*analysis.Result, error) {
	events := make(chan analysis.Event, 64)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		runOpts := opts
		runOpts.Progress = analysis.ChannelSink{Ch: events}
		res, err := analysis.Run(ctx, traceData, typesData, runOpts)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, analysis.Stages(), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
