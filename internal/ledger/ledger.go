// Package ledger keeps a cross-project record of every generated context
// document in SQLite with an FTS5 index, so earlier documents can be found
// by what they contained.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HendryAvila/llm-prep/internal/prepfail"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Config holds ledger configuration.
type Config struct {
	DataDir          string
	MaxSearchResults int
}

// DefaultConfig returns the ledger configuration rooted at dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{DataDir: dataDir, MaxSearchResults: 50}
}

// Entry is one generated document.
type Entry struct {
	ID          string   `json:"id"`
	Project     string   `json:"project"`
	Output      string   `json:"output"`
	Description string   `json:"description"`
	Bytes       int64    `json:"bytes"`
	Tokens      int      `json:"tokens"`
	Files       []string `json:"files"`
	Dumps       []string `json:"dumps"`
	CreatedAt   string   `json:"created_at"`
}

// SearchResult is an Entry with its FTS5 rank.
type SearchResult struct {
	Entry
	Rank float64 `json:"rank"`
}

// SearchOptions filters a search.
type SearchOptions struct {
	Project string
	Limit   int
}

// Ledger is the SQLite-backed document ledger.
type Ledger struct {
	db  *sql.DB
	cfg Config
}

// New opens (creating if needed) ledger.db under cfg.DataDir.
func New(cfg Config) (*Ledger, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("ledger: create data dir: %w", err)
	}
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = 50
	}

	dbPath := filepath.Join(cfg.DataDir, "ledger.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("ledger: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ledger: pragma %q: %w", p, err)
		}
	}

	l := &Ledger{db: db, cfg: cfg}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: migration: %w", err)
	}
	return l, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT    NOT NULL UNIQUE,
			project     TEXT    NOT NULL,
			output      TEXT    NOT NULL,
			description TEXT    NOT NULL DEFAULT '',
			bytes       INTEGER NOT NULL DEFAULT 0,
			tokens      INTEGER NOT NULL DEFAULT 0,
			files       TEXT    NOT NULL DEFAULT '[]',
			dumps       TEXT    NOT NULL DEFAULT '[]',
			paths       TEXT    NOT NULL DEFAULT '',
			created_at  TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_doc_project ON documents(project);
		CREATE INDEX IF NOT EXISTS idx_doc_created ON documents(created_at DESC);

		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			description,
			paths,
			project,
			content='documents',
			content_rowid='seq'
		);

		CREATE TRIGGER IF NOT EXISTS doc_fts_insert AFTER INSERT ON documents BEGIN
			INSERT INTO documents_fts(rowid, description, paths, project)
			VALUES (new.seq, new.description, new.paths, new.project);
		END;

		CREATE TRIGGER IF NOT EXISTS doc_fts_delete AFTER DELETE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, description, paths, project)
			VALUES ('delete', old.seq, old.description, old.paths, old.project);
		END;
	`
	_, err := l.db.Exec(schema)
	return err
}

// Record stores e, assigning an id and timestamp when missing, and
// returns the id.
func (l *Ledger) Record(e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt == "" {
		e.CreatedAt = timeNow().UTC().Format(time.RFC3339)
	}
	files, err := json.Marshal(nonNil(e.Files))
	if err != nil {
		return "", fmt.Errorf("ledger: marshal files: %w", err)
	}
	dumps, err := json.Marshal(nonNil(e.Dumps))
	if err != nil {
		return "", fmt.Errorf("ledger: marshal dumps: %w", err)
	}
	paths := strings.Join(append(append([]string{e.Output}, e.Files...), e.Dumps...), " ")

	_, err = l.db.Exec(`
		INSERT INTO documents (id, project, output, description, bytes, tokens, files, dumps, paths, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Project, e.Output, e.Description, e.Bytes, e.Tokens, string(files), string(dumps), paths, e.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("ledger: record: %w", err)
	}
	return e.ID, nil
}

// Get returns one entry by id. A missing id is a prepfail not-found error.
func (l *Ledger) Get(id string) (*Entry, error) {
	row := l.db.QueryRow(`
		SELECT id, project, output, description, bytes, tokens, files, dumps, created_at
		FROM documents WHERE id = ?`, id)
	e, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, prepfail.NotFound("document " + id)
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: get: %w", err)
	}
	return e, nil
}

// Recent returns the newest entries, optionally for one project.
func (l *Ledger) Recent(project string, limit int) ([]Entry, error) {
	limit = l.clamp(limit)
	q := `SELECT id, project, output, description, bytes, tokens, files, dumps, created_at FROM documents`
	args := []any{}
	if project != "" {
		q += " WHERE project = ?"
		args = append(args, project)
	}
	q += " ORDER BY created_at DESC, seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Search runs an FTS5 query over descriptions and included paths. An
// empty query falls back to Recent.
func (l *Ledger) Search(query string, opts SearchOptions) ([]SearchResult, error) {
	limit := l.clamp(opts.Limit)
	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		recent, err := l.Recent(opts.Project, limit)
		if err != nil {
			return nil, err
		}
		out := make([]SearchResult, 0, len(recent))
		for _, e := range recent {
			out = append(out, SearchResult{Entry: e})
		}
		return out, nil
	}

	q := `
		SELECT d.id, d.project, d.output, d.description, d.bytes, d.tokens, d.files, d.dumps, d.created_at,
		       fts.rank
		FROM documents_fts fts
		JOIN documents d ON d.seq = fts.rowid
		WHERE documents_fts MATCH ?`
	args := []any{ftsQuery}
	if opts.Project != "" {
		q += " AND d.project = ?"
		args = append(args, opts.Project)
	}
	q += " ORDER BY fts.rank LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SearchResult
	for rows.Next() {
		var rank float64
		e, err := scanEntry(func(dest ...any) error {
			return rows.Scan(append(dest, &rank)...)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, SearchResult{Entry: *e, Rank: rank})
	}
	return out, rows.Err()
}

// Delete removes one entry by id.
func (l *Ledger) Delete(id string) error {
	res, err := l.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("ledger: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return prepfail.NotFound("document " + id)
	}
	return nil
}

func (l *Ledger) clamp(limit int) int {
	if limit <= 0 {
		limit = 10
	}
	if limit > l.cfg.MaxSearchResults {
		limit = l.cfg.MaxSearchResults
	}
	return limit
}

func scanEntry(scan func(dest ...any) error) (*Entry, error) {
	var (
		e            Entry
		files, dumps string
	)
	if err := scan(&e.ID, &e.Project, &e.Output, &e.Description, &e.Bytes, &e.Tokens, &files, &dumps, &e.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(files), &e.Files); err != nil {
		return nil, fmt.Errorf("ledger: decode files: %w", err)
	}
	if err := json.Unmarshal([]byte(dumps), &e.Dumps); err != nil {
		return nil, fmt.Errorf("ledger: decode dumps: %w", err)
	}
	return &e, nil
}

// sanitizeFTS quotes each word so FTS5 operators in user input are taken
// literally.
func sanitizeFTS(query string) string {
	var words []string
	for _, w := range strings.Fields(query) {
		w = strings.ReplaceAll(w, `"`, "")
		if w != "" {
			words = append(words, `"`+w+`"`)
		}
	}
	return strings.Join(words, " ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
