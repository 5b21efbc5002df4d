package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runIn(t, t.TempDir(), args...)
}

// runIn executes the root command with home as the ledger directory, so
// several invocations can share one ledger.
func runIn(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LLMPREP_HOME", home)
	t.Setenv("LLMPREP_SETTINGS", filepath.Join(t.TempDir(), "none.yaml"))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSplitPair(t *testing.T) {
	tests := []struct {
		in, path, text string
	}{
		{"main.go", "main.go", ""},
		{"main.go:entry point", "main.go", "entry point"},
		{"a.go: note: with colon", "a.go", "note: with colon"},
		{`C:\src\a.go:win`, `C:\src\a.go`, "win"},
		{"C:/src/a.go", "C:/src/a.go", ""},
	}
	for _, tt := range tests {
		p, text := splitPair(tt.in)
		assert.Equal(t, tt.path, p, tt.in)
		assert.Equal(t, tt.text, text, tt.in)
	}
}

func TestPrepare_WritesDocument(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte("print(1)\n"), 0o644))

	out, err := run(t, "prepare", "-r", root, "-f", "app.py:entry", "-n", "note one", "-o", "cli")
	require.NoError(t, err)
	assert.Contains(t, out, "Context document created")

	data, err := os.ReadFile(filepath.Join(root, "context_reports", "cli.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "**Note:** entry")
	assert.Contains(t, string(data), "note one")
}

func TestPrepare_DryRun(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte("x\n"), 0o644))

	out, err := run(t, "prepare", "-r", root, "-f", "app.py", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run")
	_, statErr := os.Stat(filepath.Join(root, "context_reports"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPrepare_MissingFile(t *testing.T) {
	_, err := run(t, "prepare", "-r", t.TempDir(), "-f", "nope.py")
	assert.Error(t, err)
}

func TestPrepare_BlankTreeIgnoreKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte("x\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "left-pad"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "left-pad", "index.js"), []byte("x\n"), 0o644))

	_, err := run(t, "prepare", "-r", root, "-f", "app.py", "--tree-ignore", " ", "-o", "blank")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "context_reports", "blank.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "left-pad")
}

func TestHistory_ShowAndForget(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte("x\n"), 0o644))

	out, err := runIn(t, home, "prepare", "-r", root, "-f", "app.py", "-o", "hist", "--description", "login bug")
	require.NoError(t, err)
	m := regexp.MustCompile(`Ledger ID: (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2, "prepare output should carry the ledger id: %s", out)
	id := m[1]

	out, err = runIn(t, home, "history", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "hist.md")
	assert.Contains(t, out, "login bug")
	assert.Contains(t, out, "- app.py")

	out, err = runIn(t, home, "history", "forget", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed "+id)

	_, err = runIn(t, home, "history", "show", id)
	assert.Error(t, err)
	_, err = runIn(t, home, "history", "forget", id)
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644))

	out, err := run(t, "analyze", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Detected type: go")
}

func TestNotesClean(t *testing.T) {
	out, err := run(t, "notes", "clean", "-r", t.TempDir(), "--days", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 0 note(s) older than 3 day(s)")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "llmprep v")
}
