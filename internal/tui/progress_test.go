package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/speclint/internal/validator"
	"github.com/ShayCichocki/speclint/internal/xcodebuild"
	"github.com/ShayCichocki/speclint/pkg/models"
)

func TestProgress_FollowsEvents(t *testing.T) {
	events := make(chan validator.Event, 8)
	p := NewProgress("speclint", events)
	require.NotNil(t, p.Init())

	ios := models.Platform{Name: models.PlatformIOS, DeploymentTarget: "12.0"}
	release := validator.Cell{Action: xcodebuild.ActionBuild, Configuration: xcodebuild.Release}
	debug := validator.Cell{Action: xcodebuild.ActionBuild, Configuration: xcodebuild.Debug}

	steps := []validator.Event{
		{Type: validator.EventSpecStarted, Spec: "Core (1.0.0)"},
		{Type: validator.EventPlatformStarted, Platform: ios},
		{Type: validator.EventCellStarted, Cell: release},
	}
	for _, e := range steps {
		_, cmd := p.Update(EventMsg{Event: e})
		assert.NotNil(t, cmd, "keeps waiting for events")
	}

	view := p.View()
	assert.Contains(t, view, "Core (1.0.0)")
	assert.Contains(t, view, "iOS 12.0")
	assert.Contains(t, view, "build (Release, device)")

	p.Update(EventMsg{Event: validator.Event{Type: validator.EventCellFinished, Cell: release, OK: true}})
	p.Update(EventMsg{Event: validator.Event{Type: validator.EventCellSkipped, Cell: debug, Message: "xcodebuild not found"}})
	view = p.View()
	assert.Contains(t, view, "✓ build (Release, device)")
	assert.Contains(t, view, "build (Debug, device) skipped (xcodebuild not found)")

	_, cmd := p.Update(EventMsg{Event: validator.Event{Type: validator.EventRunFinished, OK: false, Message: "1 error"}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.True(t, p.Done())
	assert.False(t, p.Interrupted())
	assert.Contains(t, p.View(), "did not pass validation, due to 1 error")
}

func TestProgress_Quit(t *testing.T) {
	p := NewProgress("speclint", make(chan validator.Event))
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.True(t, p.Interrupted())
}

func TestProgress_ClosedChannel(t *testing.T) {
	events := make(chan validator.Event)
	close(events)
	p := NewProgress("speclint", events)

	msg := p.wait()()
	_, cmd := p.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
