package tools

import (
	"testing"

	"github.com/HendryAvila/llm-prep/internal/prepfail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileSelections_Synonyms(t *testing.T) {
	raw := []interface{}{
		"plain.go",
		map[string]interface{}{"path": "a.go", "note": "n1"},
		map[string]interface{}{"file": "b.go", "notes": "n2"},
		map[string]interface{}{"filepath": "c.go", "comment": "n3"},
		map[string]interface{}{"path": "d.go", "description": "n4"},
	}
	got, err := parseFileSelections(raw)
	require.NoError(t, err)
	assert.Equal(t, []FileSelection{
		{Path: "plain.go"},
		{Path: "a.go", Note: "n1"},
		{Path: "b.go", Note: "n2"},
		{Path: "c.go", Note: "n3"},
		{Path: "d.go", Note: "n4"},
	}, got)
}

func TestParseFileSelections_JSONString(t *testing.T) {
	got, err := parseFileSelections(`[{"path":"x.py","note":"y"}, "z.py"]`)
	require.NoError(t, err)
	assert.Equal(t, []FileSelection{{Path: "x.py", Note: "y"}, {Path: "z.py"}}, got)
}

func TestParseFileSelections_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
	}{
		{"unknown field", []interface{}{map[string]interface{}{"path": "a", "colour": "red"}}},
		{"missing path", []interface{}{map[string]interface{}{"note": "x"}}},
		{"number item", []interface{}{float64(3)}},
		{"empty string item", []interface{}{" "}},
		{"bad json", "[not json"},
		{"wrong type", float64(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFileSelections(tt.raw)
			assert.ErrorIs(t, err, prepfail.ErrValidation)
		})
	}
}

func TestParseDumpSources(t *testing.T) {
	got, err := parseDumpSources([]interface{}{
		"a.md",
		map[string]interface{}{"path": "b.md", "name": "B"},
		map[string]interface{}{"file": "c.md", "title": "C"},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Empty(t, got[0].Title)
	assert.Equal(t, "B", got[1].Title)
	assert.Equal(t, "c.md", got[2].File)

	_, err = parseDumpSources([]interface{}{map[string]interface{}{"note": "x"}})
	assert.Error(t, err, "a dump without a file is rejected")
}

func TestParseStrings(t *testing.T) {
	got, err := parseStrings([]interface{}{"a", "", "b"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = parseStrings("single note")
	require.NoError(t, err)
	assert.Equal(t, []string{"single note"}, got)

	got, err = parseStrings(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOutputPath(t *testing.T) {
	fixToolClock(t)

	tests := []struct {
		name, dir, output, want string
	}{
		{"default name", "reports", "", "/p/reports/context_20260402_150405.md"},
		{"absolute dir", "/abs/out", "mine", "/abs/out/mine.md"},
		{"existing suffix", "", "x.MD", "/p/context_reports/x.MD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputPath("/p", tt.dir, tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := outputPath("/p", "r", `a\b`)
	assert.Error(t, err, "backslash in the output name is rejected")
}
