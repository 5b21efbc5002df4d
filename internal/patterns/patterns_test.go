package patterns

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"trims and drops blanks", []string{" a ", "", "   ", "b"}, []string{"a", "b"}},
		{"case-insensitive dedupe keeps first", []string{"Node_Modules", "node_modules", "DIST", "dist"}, []string{"Node_Modules", "DIST"}},
		{"expands embedded separators", []string{"a|b", "c"}, []string{"a", "b", "c"}},
		{"preserves order", []string{"z", "a", "m"}, []string{"z", "a", "m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestSplitJoin_EmptyForms(t *testing.T) {
	assert.Empty(t, Split(""))
	assert.Equal(t, "", Join(nil))
	assert.Equal(t, "", Join([]string{}))
}

func TestSplit_Default(t *testing.T) {
	got := Split(Default)
	require.Len(t, got, 13)
	assert.Equal(t, "bin", got[0])
	assert.Equal(t, "venv", got[len(got)-1])
}

func TestRoundTrip_Property(t *testing.T) {
	alphabet := []string{"a", "B", "*", ".", "_", " ", "|", "x", "node_modules", "*.log", "Dist", "dist", ""}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		n := rng.Intn(8)
		in := make([]string, n)
		for j := range in {
			var sb strings.Builder
			parts := rng.Intn(3) + 1
			for k := 0; k < parts; k++ {
				sb.WriteString(alphabet[rng.Intn(len(alphabet))])
			}
			in[j] = sb.String()
		}

		require.Equal(t, Normalize(in), Split(Join(in)), "Split(Join(%q))", in)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		maxLen  int
		wantErr bool
	}{
		{"clean set", []string{"node_modules", "*.log"}, 100, false},
		{"too long", []string{"aaaaaaaaaa", "bbbbbbbbbb"}, 15, true},
		{"length check disabled", []string{"aaaaaaaaaa", "bbbbbbbbbb"}, 0, false},
		{"leading slash", []string{"/build"}, 100, true},
		{"backslash", []string{`src\gen`}, 100, true},
		{"bad glob", []string{"[abc"}, 100, true},
		{"nested path ok", []string{"src/generated"}, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.in, tt.maxLen)
			assert.Equal(t, tt.wantErr, len(res.Errors) > 0, "errors = %q", res.Errors)
			assert.Equal(t, !tt.wantErr, res.OK())
		})
	}
}

func TestValidate_JoinedPresentDespiteErrors(t *testing.T) {
	res := Validate([]string{"/abs", "ok"}, 100)
	require.False(t, res.OK())
	assert.Equal(t, "/abs|ok", res.Joined)
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"*", "overly broad"},
		{"src/**", "'**'"},
		{".git", "always ignored"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			res := Validate([]string{tt.pattern}, 100)
			require.True(t, res.OK(), "unexpected errors: %q", res.Errors)
			require.Len(t, res.Warnings, 1)
			assert.Contains(t, res.Warnings[0], tt.want)
		})
	}
}

func TestContainsFold(t *testing.T) {
	set := []string{"Node_Modules", "*.log"}
	assert.True(t, ContainsFold(set, "node_modules"))
	assert.False(t, ContainsFold(set, "dist"))
}
