// Package tui provides the terminal progress view for `speclint lint --ui`.
//
// The view is read-only. It follows the progress events of one validation run:
// the spec and platform being analysed, a spinner on the running cell, a ✓ or ✗
// per finished cell, skipped cells with their reason, and the final verdict.
// Users can quit early with 'q' or Ctrl+C, which cancels the run.
//
// Usage:
//
//	sink := validator.NewChannelSink(64, logger)
//	model := tui.NewProgress("speclint Core (1.0.0)", sink.Events())
//	go builder.Build(ctx) // built WithProgress(sink); close the sink afterwards
//	tea.NewProgram(model).Run()
package tui
