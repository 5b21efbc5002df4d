package assembler

import (
	"fmt"
	"strings"
	"sync"

	"github.com/HendryAvila/llm-prep/internal/config"
	"github.com/HendryAvila/llm-prep/internal/prepfail"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/tiktoken-go/tokenizer"
)

// Manifest lists what a document includes.
type Manifest struct {
	Files     []ManifestFile `json:"files"`
	Dumps     []ManifestDump `json:"dumps"`
	Notes     int            `json:"notes"`
	NoteFiles []string       `json:"note_files"`
	Ignore    string         `json:"ignore"`
	TreeDepth int            `json:"tree_depth"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// ManifestFile describes one file in focus.
type ManifestFile struct {
	Path   string `json:"path"`
	Note   string `json:"note,omitempty"`
	Bytes  int64  `json:"bytes"`
	Binary bool   `json:"binary,omitempty"`
}

// ManifestDump describes one dump section.
type ManifestDump struct {
	Path  string `json:"path,omitempty"`
	Title string `json:"title"`
	Bytes int    `json:"bytes"`
}

// SaveResult reports a written document.
type SaveResult struct {
	Path     string
	Bytes    int64
	Tokens   int
	Manifest Manifest
}

// Manifest returns the inclusion manifest for the current state.
func (a *Assembler) Manifest() Manifest {
	m := Manifest{
		Files:     make([]ManifestFile, 0, len(a.files)),
		Dumps:     make([]ManifestDump, 0, len(a.dumps)),
		Notes:     len(a.notes),
		NoteFiles: make([]string, 0, len(a.noteFiles)),
		Ignore:    a.ignore,
		TreeDepth: a.treeMaxDepth,
		Warnings:  a.warnings,
	}
	for _, f := range a.files {
		m.Files = append(m.Files, ManifestFile{Path: f.Path, Note: f.Note, Bytes: f.Size, Binary: f.Binary})
	}
	for _, d := range a.dumps {
		m.Dumps = append(m.Dumps, ManifestDump{Path: d.Path, Title: d.Title, Bytes: len(d.Content)})
	}
	for _, nf := range a.noteFiles {
		m.NoteFiles = append(m.NoteFiles, nf.Path)
	}
	return m
}

// String renders the manifest as the preview listing used by dry runs and
// status messages.
func (m Manifest) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Files in focus (%d):\n", len(m.Files))
	for _, f := range m.Files {
		line := fmt.Sprintf("  - %s (%s)", f.Path, humanize.Bytes(uint64(f.Bytes)))
		if f.Binary {
			line += " [binary, placeholder only]"
		}
		if f.Note != "" {
			line += ": " + f.Note
		}
		sb.WriteString(line + "\n")
	}
	fmt.Fprintf(&sb, "Context documents (%d):\n", len(m.Dumps))
	for _, d := range m.Dumps {
		src := d.Path
		if src == "" {
			src = "inline"
		}
		fmt.Fprintf(&sb, "  - %s [%s]\n", d.Title, src)
	}
	fmt.Fprintf(&sb, "General notes: %d\n", m.Notes)
	if len(m.NoteFiles) > 0 {
		fmt.Fprintf(&sb, "Appended note files: %s\n", strings.Join(m.NoteFiles, ", "))
	}
	fmt.Fprintf(&sb, "Tree depth: %d\n", m.TreeDepth)
	fmt.Fprintf(&sb, "Tree ignore: %s", m.Ignore)
	for _, w := range m.Warnings {
		fmt.Fprintf(&sb, "\n⚠️  %s", w)
	}
	return sb.String()
}

// Save renders the document and writes it to path, replacing any existing
// file. A document over the context ceiling is not written.
func (a *Assembler) Save(path string) (*SaveResult, error) {
	doc := a.Render()
	size := int64(len(doc))
	if a.maxContextSize > 0 && size > a.maxContextSize {
		return nil, prepfail.SizeLimit(path, size, a.maxContextSize)
	}
	if err := config.WriteFileAtomic(path, []byte(doc), 0o644); err != nil {
		return nil, prepfail.IO("writing document", path, err)
	}

	res := &SaveResult{
		Path:     path,
		Bytes:    size,
		Tokens:   CountTokens(doc),
		Manifest: a.Manifest(),
	}
	log.Info().
		Str("path", path).
		Int64("bytes", size).
		Int("tokens", res.Tokens).
		Int("files", len(a.files)).
		Msg("context document written")
	return res, nil
}

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// CountTokens returns the cl100k token count of text. If the encoder is
// unavailable it falls back to the chars/4 approximation.
func CountTokens(text string) int {
	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			log.Warn().Err(err).Msg("tokenizer unavailable, estimating tokens")
			return
		}
		codec = c
	})
	if codec != nil {
		if ids, _, err := codec.Encode(text); err == nil {
			return len(ids)
		}
	}
	return (len(text) + 3) / 4
}
