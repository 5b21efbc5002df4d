package ledger

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HendryAvila/llm-prep/internal/prepfail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLedger creates a Ledger backed by a temp directory for isolation.
func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := New(Config{DataDir: t.TempDir(), MaxSearchResults: 20})
	require.NoError(t, err, "failed to create ledger")
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func record(t *testing.T, l *Ledger, e Entry) string {
	t.Helper()
	id, err := l.Record(e)
	require.NoError(t, err)
	return id
}

// ─── New ────────────────────────────────────────────────────────────────────

func TestNew_CreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(DefaultConfig(dir))
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	_, err = os.Stat(filepath.Join(dir, "ledger.db"))
	assert.NoError(t, err, "ledger.db not created")
}

func TestNew_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	l, err := New(DefaultConfig(dir))
	require.NoError(t, err)
	id := record(t, l, Entry{Project: "/p", Output: "a.md"})
	_ = l.Close()

	l2, err := New(DefaultConfig(dir))
	require.NoError(t, err)
	defer func() { _ = l2.Close() }()
	_, err = l2.Get(id)
	assert.NoError(t, err)
}

func TestNew_OpenFailure(t *testing.T) {
	orig := openDB
	openDB = func(string, string) (*sql.DB, error) { return nil, errors.New("boom") }
	t.Cleanup(func() { openDB = orig })

	_, err := New(DefaultConfig(t.TempDir()))
	assert.Error(t, err)
}

// ─── Record / Get ───────────────────────────────────────────────────────────

func TestRecordAndGet(t *testing.T) {
	l := newTestLedger(t)

	orig := timeNow
	timeNow = func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { timeNow = orig })

	id := record(t, l, Entry{
		Project:     "/work/api",
		Output:      "context_reports/context_1.md",
		Description: "auth refactor",
		Bytes:       1234,
		Tokens:      300,
		Files:       []string{"src/auth.go"},
		Dumps:       []string{"docs/design.md"},
	})
	require.NotEmpty(t, id)

	e, err := l.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "/work/api", e.Project)
	assert.Equal(t, int64(1234), e.Bytes)
	assert.Equal(t, 300, e.Tokens)
	assert.Equal(t, []string{"src/auth.go"}, e.Files)
	assert.Equal(t, []string{"docs/design.md"}, e.Dumps)
	assert.Equal(t, "2026-02-01T10:00:00Z", e.CreatedAt)
}

func TestGet_Missing(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Get("nope")
	assert.ErrorIs(t, err, prepfail.ErrNotFound)
}

func TestRecord_NilSlicesStoredEmpty(t *testing.T) {
	l := newTestLedger(t)
	id := record(t, l, Entry{Project: "/p", Output: "x.md"})
	e, err := l.Get(id)
	require.NoError(t, err)
	assert.NotNil(t, e.Files)
	assert.NotNil(t, e.Dumps)
}

// ─── Recent / Search ────────────────────────────────────────────────────────

func TestRecent_NewestFirstAndProjectFilter(t *testing.T) {
	l := newTestLedger(t)
	record(t, l, Entry{Project: "/a", Output: "1.md", CreatedAt: "2026-01-01T00:00:00Z"})
	record(t, l, Entry{Project: "/b", Output: "2.md", CreatedAt: "2026-01-02T00:00:00Z"})
	record(t, l, Entry{Project: "/a", Output: "3.md", CreatedAt: "2026-01-03T00:00:00Z"})

	all, err := l.Recent("", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3.md", all[0].Output)

	onlyA, err := l.Recent("/a", 10)
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)
}

func TestSearch_MatchesDescriptionAndPaths(t *testing.T) {
	l := newTestLedger(t)
	record(t, l, Entry{Project: "/a", Output: "1.md", Description: "payment retry bug", Files: []string{"billing/retry.go"}})
	record(t, l, Entry{Project: "/a", Output: "2.md", Description: "onboarding copy", Files: []string{"web/signup.tsx"}})

	res, err := l.Search("payment", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "1.md", res[0].Output)

	res, err = l.Search("signup.tsx", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "2.md", res[0].Output)
}

func TestSearch_ProjectFilterAndOperatorsLiteral(t *testing.T) {
	l := newTestLedger(t)
	record(t, l, Entry{Project: "/a", Output: "1.md", Description: "cache layer"})
	record(t, l, Entry{Project: "/b", Output: "2.md", Description: "cache layer"})

	// "OR" is quoted and must appear literally, so nothing matches.
	res, err := l.Search(`cache OR "`, SearchOptions{Project: "/b"})
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = l.Search("cache", SearchOptions{Project: "/b"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "/b", res[0].Project)
}

func TestSearch_EmptyQueryFallsBackToRecent(t *testing.T) {
	l := newTestLedger(t)
	record(t, l, Entry{Project: "/a", Output: "1.md"})

	res, err := l.Search("   ", SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestDelete(t *testing.T) {
	l := newTestLedger(t)
	id := record(t, l, Entry{Project: "/a", Output: "1.md", Description: "temporary"})

	require.NoError(t, l.Delete(id))
	assert.ErrorIs(t, l.Delete(id), prepfail.ErrNotFound, "second Delete should fail")

	_, err := l.Get(id)
	assert.ErrorIs(t, err, prepfail.ErrNotFound)

	res, err := l.Search("temporary", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, res, "deleted entry still searchable")
}

func TestSanitizeFTS(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{`a "b"`, `"a" "b"`},
		{`"`, ""},
		{"x OR y", `"x" "OR" "y"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFTS(tt.in), "sanitizeFTS(%q)", tt.in)
	}
}
