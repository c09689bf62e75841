// Package report renders validation results for terminals and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/ShayCichocki/speclint/internal/diag"
	"github.com/ShayCichocki/speclint/internal/xcodebuild"
)

type severityStyle struct {
	label string
	attr  color.Attribute
}

// severityStyles has exactly one entry per severity.
var severityStyles = [...]severityStyle{
	diag.SevNote:    {label: "NOTE", attr: color.FgMagenta},
	diag.SevWarning: {label: "WARN", attr: color.FgYellow},
	diag.SevError:   {label: "ERROR", attr: color.FgRed},
}

var _ = [1]struct{}{}[len(severityStyles)-int(diag.NumSeverities)]

// Label returns the fixed-width report label of sev.
func Label(sev diag.Severity) string {
	return fmt.Sprintf("%-5s", severityStyles[sev].label)
}

// Printer writes human readable reports.
type Printer struct {
	out     io.Writer
	noColor bool
}

// Option configures a Printer.
type Option func(*Printer)

// WithoutColor disables ANSI colours.
func WithoutColor() Option {
	return func(p *Printer) { p.noColor = true }
}

// New creates a Printer writing to out.
func New(out io.Writer, opts ...Option) *Printer {
	p := &Printer{out: out}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Printer) paint(attr color.Attribute, s string) string {
	c := color.New(attr)
	if p.noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c.Sprint(s)
}

// Banner prints the header shown before validation starts.
func (p *Printer) Banner(spec string) {
	title := "speclint"
	if !p.noColor {
		title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4")).Render(title)
	}
	fmt.Fprintf(p.out, "%s %s\n\n", title, spec)
}

// Results prints one line per diagnostic, errors first.
func (p *Printer) Results(results []diag.Diagnostic) {
	if len(results) == 0 {
		return
	}
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b diag.Diagnostic) int {
		return int(b.Severity) - int(a.Severity)
	})
	for _, d := range sorted {
		fmt.Fprintln(p.out, p.Line(d))
	}
	fmt.Fprintln(p.out)
}

// Line renders a diagnostic, e.g. "    - ERROR | [iOS] [Core/Net] xcodebuild: message".
func (p *Printer) Line(d diag.Diagnostic) string {
	style := severityStyles[d.Severity]

	var b strings.Builder
	b.WriteString("    - ")
	b.WriteString(p.paint(style.attr, Label(d.Severity)))
	b.WriteString(" | ")
	if len(d.Platforms) == 1 {
		b.WriteString("[" + d.Platforms[0].DisplayName() + "] ")
	}
	switch n := len(d.Subspecs); {
	case n > 2:
		b.WriteString("[" + strings.Join(d.Subspecs[:3], ", ") + ", and more...] ")
	case n > 0:
		b.WriteString("[" + strings.Join(d.Subspecs, ",") + "] ")
	}
	b.WriteString(d.Attribute)
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// Verdict prints the closing line of a run.
func (p *Printer) Verdict(spec string, success bool, reason string) {
	if success {
		fmt.Fprintln(p.out, p.paint(color.FgGreen, " -> "+spec+" passed validation."))
		return
	}
	fmt.Fprintln(p.out, p.paint(color.FgRed, "[!] "+spec+" did not pass validation, due to "+reason+"."))
}

// Workspace reports a workspace kept on disk.
func (p *Printer) Workspace(path string) {
	fmt.Fprintf(p.out, "Pods workspace available at `%s` for inspection.\n", filepath.Join(path, xcodebuild.WorkspaceFile))
}

// Report is the machine readable outcome of a run.
type Report struct {
	Spec          string            `json:"spec"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Workspace     string            `json:"workspace,omitempty"`
	Results       []diag.Diagnostic `json:"results"`
}

// WriteJSON encodes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	if r.Results == nil {
		r.Results = []diag.Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
