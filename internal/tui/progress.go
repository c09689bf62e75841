package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/speclint/internal/validator"
)

// EventMsg carries one validator event into the program.
type EventMsg struct {
	Event validator.Event
}

// closedMsg reports that the event channel was closed.
type closedMsg struct{}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	specStyle     = lipgloss.NewStyle().Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#96E6A1"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	skipStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	platformStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC857"))
)

type line struct {
	text  string
	style lipgloss.Style
}

// Progress is a Bubble Tea model that follows a validation run.
type Progress struct {
	title   string
	events  <-chan validator.Event
	spinner spinner.Model

	lines   []line
	running string

	done     bool
	success  bool
	reason   string
	quitting bool
}

// NewProgress creates a model reading from events.
func NewProgress(title string, events <-chan validator.Event) *Progress {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &Progress{title: title, events: events, spinner: s}
}

// Init implements tea.Model.
func (p *Progress) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.wait())
}

func (p *Progress) wait() tea.Cmd {
	events := p.events
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return EventMsg{Event: e}
	}
}

// Update implements tea.Model.
func (p *Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			p.quitting = true
			return p, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	case EventMsg:
		p.apply(msg.Event)
		if p.done {
			return p, tea.Quit
		}
		return p, p.wait()
	case closedMsg:
		return p, tea.Quit
	}
	return p, nil
}

func (p *Progress) apply(e validator.Event) {
	switch e.Type {
	case validator.EventSpecStarted:
		p.lines = append(p.lines, line{text: e.Spec, style: specStyle})
	case validator.EventPlatformStarted:
		p.lines = append(p.lines, line{text: "  " + e.Platform.String(), style: platformStyle})
	case validator.EventCellStarted:
		p.running = e.Cell.String()
	case validator.EventCellFinished:
		p.running = ""
		if e.OK {
			p.lines = append(p.lines, line{text: "    ✓ " + e.Cell.String(), style: okStyle})
		} else {
			p.lines = append(p.lines, line{text: "    ✗ " + e.Cell.String(), style: failStyle})
		}
	case validator.EventCellSkipped:
		p.lines = append(p.lines, line{text: fmt.Sprintf("    - %s skipped (%s)", e.Cell, e.Message), style: skipStyle})
	case validator.EventRunFinished:
		p.running = ""
		p.done = true
		p.success = e.OK
		p.reason = e.Message
	}
}

// Done reports whether the run finished.
func (p *Progress) Done() bool {
	return p.done
}

// Interrupted reports whether the user quit before the run finished.
func (p *Progress) Interrupted() bool {
	return p.quitting && !p.done
}

// View implements tea.Model.
func (p *Progress) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.title))
	b.WriteString("\n\n")
	for _, l := range p.lines {
		b.WriteString(l.style.Render(l.text))
		b.WriteString("\n")
	}
	if p.running != "" {
		b.WriteString(fmt.Sprintf("    %s %s\n", p.spinner.View(), p.running))
	}
	if p.done {
		b.WriteString("\n")
		if p.success {
			b.WriteString(okStyle.Render("passed validation"))
		} else {
			b.WriteString(failStyle.Render("did not pass validation, due to " + p.reason))
		}
		b.WriteString("\n")
	}
	return b.String()
}
