package models

import "strings"

// Spec is a component descriptor with optional nested subspecs.
// Subspecs must be attached with AddSubspec (or Link) so they know their parent.
type Spec struct {
	// Name is the base name; FullName returns the qualified root/sub name.
	Name             string
	Version          string
	Homepage         string
	DocumentationURL string

	// Platforms lists the declared platforms in declaration order.
	// An empty list inherits from the parent.
	Platforms []Platform

	SourceFiles []string
	Resources   []string

	// TestOnly marks a test spec. It is run as a test phase of its parent, never built directly.
	TestOnly bool

	Subspecs []*Spec

	// Dir is the directory the descriptor was loaded from (root only).
	Dir string

	parent *Spec
}

// AddSubspec attaches sub as a child of s and returns sub.
func (s *Spec) AddSubspec(sub *Spec) *Spec {
	sub.parent = s
	s.Subspecs = append(s.Subspecs, sub)
	return sub
}

// Link sets parent pointers for the whole tree rooted at s.
func (s *Spec) Link() {
	for _, sub := range s.Subspecs {
		sub.parent = s
		sub.Link()
	}
}

// Parent returns the parent spec, or nil for the root.
func (s *Spec) Parent() *Spec {
	return s.parent
}

// Root returns the root of the tree.
func (s *Spec) Root() *Spec {
	root := s
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// IsRoot returns true if s has no parent.
func (s *Spec) IsRoot() bool {
	return s.parent == nil
}

// FullName returns the qualified name, e.g. "Core/Extra".
func (s *Spec) FullName() string {
	if s.parent == nil {
		return s.Name
	}
	return s.parent.FullName() + "/" + s.Name
}

// String renders the spec as "Name (version)".
func (s *Spec) String() string {
	version := s.Root().Version
	if version == "" {
		return s.FullName()
	}
	return s.FullName() + " (" + version + ")"
}

// AvailablePlatforms returns the platforms the spec supports, in declaration order.
func (s *Spec) AvailablePlatforms() []Platform {
	for cur := s; cur != nil; cur = cur.parent {
		if len(cur.Platforms) > 0 {
			out := make([]Platform, len(cur.Platforms))
			copy(out, cur.Platforms)
			return out
		}
	}
	names := AllPlatformNames()
	out := make([]Platform, 0, len(names))
	for _, name := range names {
		out = append(out, Platform{Name: name})
	}
	return out
}

// Platform returns the declared platform with the given name.
func (s *Spec) Platform(name PlatformName) (Platform, bool) {
	for _, p := range s.AvailablePlatforms() {
		if p.Name == name {
			return p, true
		}
	}
	return Platform{}, false
}

// SupportsPlatform returns true if the spec can be built for name.
func (s *Spec) SupportsPlatform(name PlatformName) bool {
	_, ok := s.Platform(name)
	return ok
}

// SubspecByName finds a spec in the tree by its qualified name.
func (s *Spec) SubspecByName(fullName string) *Spec {
	if s.FullName() == fullName {
		return s
	}
	if !strings.HasPrefix(fullName, s.FullName()+"/") {
		return nil
	}
	for _, sub := range s.Subspecs {
		if found := sub.SubspecByName(fullName); found != nil {
			return found
		}
	}
	return nil
}

// TestSpecs returns the direct test-only children in declaration order.
func (s *Spec) TestSpecs() []*Spec {
	var out []*Spec
	for _, sub := range s.Subspecs {
		if sub.TestOnly {
			out = append(out, sub)
		}
	}
	return out
}

// LibrarySubspecs returns the direct children that are not test-only.
func (s *Spec) LibrarySubspecs() []*Spec {
	var out []*Spec
	for _, sub := range s.Subspecs {
		if !sub.TestOnly {
			out = append(out, sub)
		}
	}
	return out
}

// Walk visits s and every descendant depth-first in declaration order.
func (s *Spec) Walk(fn func(*Spec)) {
	fn(s)
	for _, sub := range s.Subspecs {
		sub.Walk(fn)
	}
}
