// Package notes manages the caller-created markdown notes kept under a
// project's .llm_prep_notes directory.
package notes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HendryAvila/llm-prep/internal/config"
	"github.com/HendryAvila/llm-prep/internal/prepfail"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultType is the front-matter type of notes created without one.
const DefaultType = "debug_notes"

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// header is the YAML front matter written at the top of each note.
type header struct {
	Created string `yaml:"created"`
	Type    string `yaml:"type"`
}

// Note describes a note to create.
type Note struct {
	Filename  string
	Content   string
	Subfolder string
	Type      string
}

// Create writes a note under <root>/.llm_prep_notes[/subfolder] and
// returns its path. ".md" is appended to the filename when missing.
// Neither the filename nor the subfolder may leave the notes directory.
func Create(projectRoot string, n Note) (string, error) {
	name := strings.TrimSpace(n.Filename)
	if name == "" {
		return "", prepfail.Validation("filename is required")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", prepfail.Validation("filename %q must not contain path separators", name)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".md") {
		name += ".md"
	}

	base := config.NotesPath(projectRoot)
	dir := base
	if sub := strings.TrimSpace(n.Subfolder); sub != "" {
		dir = filepath.Join(base, filepath.FromSlash(sub))
		if r, err := filepath.Rel(base, dir); err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return "", prepfail.Validation("subfolder %q escapes the notes directory", sub)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", prepfail.IO("creating notes directory", dir, err)
	}

	typ := n.Type
	if typ == "" {
		typ = DefaultType
	}
	front, err := yaml.Marshal(header{Created: timeNow().Format(time.RFC3339), Type: typ})
	if err != nil {
		return "", fmt.Errorf("marshaling note header: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(front)
	sb.WriteString("---\n\n")
	sb.WriteString(n.Content)
	if !strings.HasSuffix(n.Content, "\n") {
		sb.WriteString("\n")
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", prepfail.IO("writing note", path, err)
	}
	return path, nil
}

// ReadHeader parses the front matter of a note. Notes without one
// return a zero header and no error.
func ReadHeader(path string) (created time.Time, typ string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, "", prepfail.IO("reading note", path, err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		return time.Time{}, "", nil
	}
	end := strings.Index(text[4:], "\n---")
	if end < 0 {
		return time.Time{}, "", nil
	}

	var h header
	if err := yaml.Unmarshal([]byte(text[4:4+end]), &h); err != nil {
		return time.Time{}, "", prepfail.Validation("note %s has malformed front matter: %v", path, err)
	}
	if h.Created != "" {
		created, _ = time.Parse(time.RFC3339, h.Created)
	}
	return created, h.Type, nil
}

// Clean deletes every markdown file under dir whose modification time is
// older than olderThanDays days and returns how many were removed. A
// missing dir is not an error.
func Clean(dir string, olderThanDays int) (int, error) {
	if olderThanDays < 0 {
		return 0, prepfail.Validation("older_than_days must not be negative, got %d", olderThanDays)
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	cutoff := timeNow().Add(-time.Duration(olderThanDays) * 24 * time.Hour)
	deleted := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("clean: skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return prepfail.IO("deleting note", path, err)
		}
		deleted++
		return nil
	})
	if err != nil {
		return deleted, err
	}
	return deleted, nil
}
