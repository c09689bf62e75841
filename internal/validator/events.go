package validator

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ShayCichocki/speclint/internal/xcodebuild"
	"github.com/ShayCichocki/speclint/pkg/models"
)

// EventType identifies a progress event.
type EventType string

const (
	// EventSpecStarted fires before a spec or subspec is analysed.
	EventSpecStarted EventType = "spec_started"
	// EventPlatformStarted fires after the workspace for a platform is acquired.
	EventPlatformStarted EventType = "platform_started"
	// EventCellStarted fires before the build driver is invoked.
	EventCellStarted EventType = "cell_started"
	// EventCellFinished fires after a cell's output has been recorded.
	EventCellFinished EventType = "cell_finished"
	// EventCellSkipped fires for cells that were not run.
	EventCellSkipped EventType = "cell_skipped"
	// EventPlatformFinished fires after the workspace is released.
	EventPlatformFinished EventType = "platform_finished"
	// EventRunFinished fires once the verdict is known.
	EventRunFinished EventType = "run_finished"
)

// Cell is one build or test run of the matrix.
type Cell struct {
	Action        xcodebuild.Action
	Configuration xcodebuild.Configuration
	Simulator     bool
	// TestSpec is the test spec a test cell runs.
	TestSpec string
}

func (c Cell) String() string {
	dest := "device"
	if c.Simulator {
		dest = "simulator"
	}
	if c.Action == xcodebuild.ActionTest {
		return fmt.Sprintf("test %s (%s, %s)", c.TestSpec, c.Configuration, dest)
	}
	return fmt.Sprintf("build (%s, %s)", c.Configuration, dest)
}

// Event reports validation progress.
type Event struct {
	Type     EventType
	Spec     string
	Platform models.Platform
	Cell     Cell
	// OK is set on finished events.
	OK bool
	// Message carries a skip reason or the failure reason of a run.
	Message   string
	Timestamp time.Time
}

// ProgressSink receives progress events synchronously from the validation loop.
type ProgressSink interface {
	Progress(Event)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(Event)

// Progress implements ProgressSink.
func (f ProgressFunc) Progress(e Event) {
	f(e)
}

// ChannelSink forwards events to a buffered channel for a concurrent consumer.
type ChannelSink struct {
	events  chan Event
	dropped atomic.Uint64
	logger  zerolog.Logger
}

// NewChannelSink creates a ChannelSink with the given buffer size.
// Dropped events are reported to logger.
func NewChannelSink(bufferSize int, logger zerolog.Logger) *ChannelSink {
	return &ChannelSink{events: make(chan Event, bufferSize), logger: logger}
}

// Progress sends e, waiting briefly for a full channel to drain before dropping it.
func (s *ChannelSink) Progress(e Event) {
	select {
	case s.events <- e:
		return
	default:
	}

	select {
	case s.events <- e:
	case <-time.After(100 * time.Millisecond):
		if n := s.dropped.Add(1); n%10 == 1 {
			s.logger.Warn().Uint64("dropped", n).Str("type", string(e.Type)).Msg("progress channel full, dropping event")
		}
	}
}

// Events returns the receive side of the channel.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// Dropped returns how many events were dropped.
func (s *ChannelSink) Dropped() uint64 {
	return s.dropped.Load()
}

// Close closes the channel. No Progress calls may follow.
func (s *ChannelSink) Close() {
	close(s.events)
}
