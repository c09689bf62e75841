// Package classify turns raw xcodebuild output into classified diagnostic candidates.
package classify

import (
	"regexp"
	"strings"

	"github.com/ShayCichocki/speclint/internal/diag"
)

// Candidate is one classified line of build output.
type Candidate struct {
	Severity diag.Severity
	Message  string
}

// inputFileQuirk marks lines where the tool's own linter disagrees with its
// compiler. The compiler is authoritative, so these are dropped.
const inputFileQuirk = "'InputFile' should have"

var (
	errorsGenerated   = regexp.MustCompile(`errors? generated\.`)
	nullError         = regexp.MustCompile(`error: \(null\)`)
	warningsGenerated = regexp.MustCompile(`warnings? generated\.`)
	iOS8Frameworks    = regexp.MustCompile(`frameworks only run on iOS 8`)
	macroExpansion    = regexp.MustCompile(`expanded from macro`)

	locatedError   = regexp.MustCompile(`\S+:\d+:\d+: error:`)
	locatedWarning = regexp.MustCompile(`\S+:\d+:\d+: warning:`)

	leadingSpaces = regexp.MustCompile(`^ *`)
)

// Classifier classifies output produced inside one build workspace.
type Classifier struct {
	prefixes []string
}

// New returns a Classifier that strips paths under workspaceDir from messages.
// An empty workspaceDir disables stripping.
func New(workspaceDir string) *Classifier {
	c := &Classifier{}
	if workspaceDir != "" {
		dir := strings.TrimRight(workspaceDir, "/")
		c.prefixes = []string{dir + "/Pods/", dir + "/"}
	}
	return c
}

// Classify returns the diagnostic candidates in raw, in output order.
func (c *Classifier) Classify(raw string) []Candidate {
	var out []Candidate
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if !selected(line) {
			continue
		}
		msg := c.normalize(line)
		if strings.Contains(msg, inputFileQuirk) {
			continue
		}
		out = append(out, Candidate{Severity: severityOf(msg), Message: msg})
	}
	return out
}

// selected reports whether a line carries a diagnostic marker and is not known tool noise.
func selected(line string) bool {
	switch {
	case strings.Contains(line, "error: ") && !errorsGenerated.MatchString(line) && !nullError.MatchString(line):
		return true
	case strings.Contains(line, "warning: ") && !warningsGenerated.MatchString(line) && !iOS8Frameworks.MatchString(line):
		return true
	case strings.Contains(line, "note: ") && !macroExpansion.MatchString(line):
		return true
	}
	return false
}

func severityOf(msg string) diag.Severity {
	switch {
	case locatedError.MatchString(msg):
		return diag.SevError
	case locatedWarning.MatchString(msg):
		return diag.SevWarning
	default:
		return diag.SevNote
	}
}

// normalize makes the message independent of the workspace location.
func (c *Classifier) normalize(line string) string {
	msg := strings.ToValidUTF8(line, "�")
	for _, prefix := range c.prefixes {
		msg = strings.ReplaceAll(msg, prefix, "")
	}
	return leadingSpaces.ReplaceAllString(msg, " ")
}
