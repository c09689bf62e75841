package diag

// Store holds the deduplicated diagnostics of one validation run.
// It is not safe for concurrent use; the orchestrator records sequentially.
type Store struct {
	items []*Diagnostic
	index map[key]*Diagnostic
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{index: make(map[key]*Diagnostic)}
}

// Record adds an observation. A repeated (severity, attribute, message, publicOnly)
// tuple does not create a new record; the scope is unioned into the existing one.
func (s *Store) Record(scope Scope, sev Severity, attribute, message string, publicOnly bool) Diagnostic {
	k := key{sev: sev, attribute: attribute, message: message, publicOnly: publicOnly}
	d, ok := s.index[k]
	if !ok {
		d = &Diagnostic{
			Severity:   sev,
			Attribute:  attribute,
			Message:    message,
			PublicOnly: publicOnly,
		}
		s.index[k] = d
		s.items = append(s.items, d)
	}
	d.tag(scope)
	return d.clone()
}

// Error records an error-severity diagnostic.
func (s *Store) Error(scope Scope, attribute, message string) Diagnostic {
	return s.Record(scope, SevError, attribute, message, false)
}

// Warning records a warning-severity diagnostic.
func (s *Store) Warning(scope Scope, attribute, message string) Diagnostic {
	return s.Record(scope, SevWarning, attribute, message, false)
}

// Note records a note-severity diagnostic.
func (s *Store) Note(scope Scope, attribute, message string) Diagnostic {
	return s.Record(scope, SevNote, attribute, message, false)
}

// Merge folds every diagnostic of other into s, preserving other's order for new records.
func (s *Store) Merge(other *Store) {
	if other == nil {
		return
	}
	for _, d := range other.items {
		k := d.key()
		existing, ok := s.index[k]
		if !ok {
			c := d.clone()
			s.index[k] = &c
			s.items = append(s.items, &c)
			continue
		}
		for _, p := range d.Platforms {
			existing.tag(Scope{Platform: p})
		}
		for _, sub := range d.Subspecs {
			existing.tag(Scope{Subspec: sub})
		}
	}
}

// All returns copies of the diagnostics in first-seen order.
func (s *Store) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(s.items))
	for _, d := range s.items {
		out = append(out, d.clone())
	}
	return out
}

// Len returns the number of distinct diagnostics.
func (s *Store) Len() int {
	return len(s.items)
}

// Count returns the number of distinct diagnostics with the given severity.
func (s *Store) Count(sev Severity) int {
	n := 0
	for _, d := range s.items {
		if d.Severity == sev {
			n++
		}
	}
	return n
}
