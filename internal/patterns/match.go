package patterns

import (
	"path"
	"path/filepath"
	"strings"
)

// Matcher tests relative paths against a compiled pattern set.
// The zero value matches nothing.
type Matcher struct {
	globs []string
}

// NewMatcher compiles the stored pattern string. Malformed globs never
// match; callers that care validate first.
func NewMatcher(stored string) *Matcher {
	split := Split(stored)
	m := &Matcher{globs: make([]string, 0, len(split))}
	for _, p := range split {
		m.globs = append(m.globs, strings.ToLower(trimDirSuffix(p)))
	}
	return m
}

// Match reports whether relPath, or its basename, matches any pattern.
// relPath may use either OS or forward-slash separators.
func (m *Matcher) Match(relPath string) bool {
	if m == nil || len(m.globs) == 0 {
		return false
	}
	rel := strings.ToLower(filepath.ToSlash(relPath))
	rel = strings.TrimPrefix(rel, "./")
	base := path.Base(rel)
	for _, g := range m.globs {
		if ok, _ := path.Match(g, rel); ok {
			return true
		}
		if ok, _ := path.Match(g, base); ok {
			return true
		}
	}
	return false
}

// Patterns returns the compiled, lower-cased globs.
func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.globs...)
}
