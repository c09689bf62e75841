package main

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/ShayCichocki/speclint/internal/tui"
	"github.com/ShayCichocki/speclint/internal/validator"
	"github.com/ShayCichocki/speclint/pkg/models"
)

type buildResult struct {
	builder *validator.Builder
	err     error
}

// runWithTUI validates spec in the background while the progress view runs.
// Quitting the view cancels the run.
func runWithTUI(ctx context.Context, spec *models.Spec, rc validator.RunConfig, timeout time.Duration,
	logger zerolog.Logger) (*validator.Builder, error) {
	// Console logs would corrupt the display.
	quiet := logger.Output(io.Discard)

	sink := validator.NewChannelSink(64, quiet)
	b, err := newBuilder(spec, rc, timeout, quiet, validator.WithProgress(sink))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan buildResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- buildResult{err: fmt.Errorf("PANIC in validation: %v", r)}
			}
			sink.Close()
		}()
		_, err := b.Build(ctx)
		done <- buildResult{builder: b, err: err}
	}()

	model := tui.NewProgress("speclint "+spec.String(), sink.Events())
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("progress view: %w", err)
	}
	if p, ok := final.(*tui.Progress); ok && p.Interrupted() {
		cancel()
	}

	res := <-done
	if res.err != nil {
		return nil, res.err
	}
	if dropped := sink.Dropped(); dropped > 0 {
		logger.Debug().Uint64("dropped", dropped).Msg("progress events dropped")
	}
	return res.builder, nil
}
