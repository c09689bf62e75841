package diag

import (
	"github.com/dustin/go-humanize/english"
)

// Policy controls how diagnostics translate into a verdict.
type Policy struct {
	// AllowWarnings tolerates warning-severity diagnostics.
	AllowWarnings bool
	// IgnorePublicOnly excludes diagnostics that only matter for public specs.
	IgnorePublicOnly bool
}

// ResultType returns the most severe severity present, or SevNote when there is none.
func (s *Store) ResultType(ignorePublicOnly bool) Severity {
	result := SevNote
	for _, d := range s.items {
		if ignorePublicOnly && d.PublicOnly {
			continue
		}
		if d.Severity > result {
			result = d.Severity
		}
	}
	return result
}

// Validated reports whether the run passes under policy.
func (s *Store) Validated(policy Policy) bool {
	switch s.ResultType(policy.IgnorePublicOnly) {
	case SevError:
		return false
	case SevWarning:
		return policy.AllowWarnings
	default:
		return true
	}
}

// FailureReason explains why the run failed, or returns "" when it passed.
// The allow-warnings hint is attached only when warnings are the first reason.
func (s *Store) FailureReason(policy Policy) string {
	if s.Validated(policy) {
		return ""
	}

	var reasons []string
	if n := s.Count(SevError); n > 0 {
		reasons = append(reasons, english.Plural(n, "error", ""))
	}
	if n := s.Count(SevWarning); !policy.AllowWarnings && n > 0 {
		reason := english.Plural(n, "warning", "")
		if len(reasons) == 0 {
			pronoun := "them"
			if n == 1 {
				pronoun = "it"
			}
			reason += " (but you can use `--allow-warnings` to ignore " + pronoun + ")"
		}
		reasons = append(reasons, reason)
	}
	if s.allPublicOnly() {
		reasons = append(reasons, "all results apply only to public specs, but you can use "+
			"`--private` to ignore them if linting the specification for a private pod")
	}
	return english.OxfordWordSeries(reasons, "and")
}

func (s *Store) allPublicOnly() bool {
	for _, d := range s.items {
		if !d.PublicOnly {
			return false
		}
	}
	return true
}
