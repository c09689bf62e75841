package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
// Higher values are more severe.
type Severity uint8

const (
	// SevNote is for informational output that never fails a run.
	SevNote Severity = iota
	// SevWarning fails a run unless warnings are tolerated.
	SevWarning
	// SevError always fails a run.
	SevError

	// NumSeverities is the number of severities. Tables indexed by Severity use it as their length.
	NumSeverities
)

func (s Severity) String() string {
	switch s {
	case SevNote:
		return "note"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity parses the lower-case severity name.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "note":
		return SevNote, nil
	case "warning":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
