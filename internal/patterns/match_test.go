package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher("node_modules|*.LOG|dist/bin|.venv/|Build")

	tests := []struct {
		path string
		want bool
	}{
		{"node_modules", true},
		{"web/node_modules", true},
		{"app.log", true},
		{"logs/APP.Log", true},
		{"dist/bin", true},
		{"dist/lib", false},
		{".venv", true},
		{"build", true},
		{"BUILD", true},
		{"src/main.go", false},
		{"./app.log", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.path))
		})
	}
}

func TestMatcher_EmptyMatchesNothing(t *testing.T) {
	var nilMatcher *Matcher
	assert.False(t, nilMatcher.Match("anything"), "nil matcher")
	assert.False(t, NewMatcher("").Match("anything"), "empty matcher")
}

func TestMatcher_MalformedGlobNeverMatches(t *testing.T) {
	assert.False(t, NewMatcher("[abc").Match("a"))
}

func TestMatcher_Patterns(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, NewMatcher("A|b/").Patterns())
}
