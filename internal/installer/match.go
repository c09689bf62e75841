package installer

import (
	"path"
	"strings"
)

// matchGlob matches a slash-separated relative path against a pattern where
// "**" spans any number of directories and other segments use path.Match.
func matchGlob(name, pattern string) bool {
	return matchParts(strings.Split(name, "/"), strings.Split(pattern, "/"))
}

func matchParts(name, pattern []string) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}

	p, rest := pattern[0], pattern[1:]
	if p == "**" {
		if len(rest) == 0 {
			return true
		}
		for i := 0; i <= len(name); i++ {
			if matchParts(name[i:], rest) {
				return true
			}
		}
		return false
	}

	if len(name) == 0 {
		return false
	}
	if ok, err := path.Match(p, name[0]); err != nil || !ok {
		return false
	}
	return matchParts(name[1:], rest)
}

// expandBraces expands the first "{a,b}" group recursively,
// so "Sources/*.{h,m}" becomes "Sources/*.h" and "Sources/*.m".
func expandBraces(pattern string) []string {
	open := strings.IndexByte(pattern, '{')
	if open < 0 {
		return []string{pattern}
	}
	closing := strings.IndexByte(pattern[open:], '}')
	if closing < 0 {
		return []string{pattern}
	}
	closing += open

	prefix, suffix := pattern[:open], pattern[closing+1:]
	var out []string
	for _, alt := range strings.Split(pattern[open+1:closing], ",") {
		out = append(out, expandBraces(prefix+alt+suffix)...)
	}
	return out
}
