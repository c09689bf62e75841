package workspace

import (
	"sort"
)

// Env is a set of environment overrides applied to child processes only.
type Env map[string]string

// With returns a copy of e with key set to value.
func (e Env) With(key, value string) Env {
	out := make(Env, len(e)+1)
	for k, v := range e {
		out[k] = v
	}
	out[key] = value
	return out
}

// Entries returns the overrides as sorted "KEY=value" strings.
func (e Env) Entries() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e[k])
	}
	return out
}
