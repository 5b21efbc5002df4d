// Package assembler builds the markdown context document: a filtered
// directory tree, the files in focus, context dumps and general notes,
// always in that order.
//
// An Assembler is bound to one project root. The add operations validate
// and read their input immediately, so Render is pure and deterministic:
// calling it twice without further adds yields identical output as long
// as the tree on disk is unchanged.
package assembler

import (
	"bytes"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/HendryAvila/llm-prep/internal/patterns"
	"github.com/HendryAvila/llm-prep/internal/prepfail"
	"github.com/HendryAvila/llm-prep/internal/settings"
	"github.com/rs/zerolog/log"
)

// BinaryPlaceholder replaces the content of files that are not text.
const BinaryPlaceholder = "[binary file omitted]"

// File is one file selection.
type File struct {
	Path    string // relative to the root, slash separated
	Note    string
	Content string
	Size    int64
	Binary  bool
}

// Dump is one context-dump section.
type Dump struct {
	Path    string // empty for dumps added from memory
	Title   string
	Content string
}

// NoteFile is a markdown file appended whole after the general notes.
type NoteFile struct {
	Path    string
	Content string
}

// Assembler accumulates document parts for one project root.
type Assembler struct {
	root     string
	realRoot string

	maxFileSize    int64
	maxContextSize int64
	treeMaxDepth   int
	treeMaxEntries int
	extAllowed     func(path string) bool

	generated time.Time
	ignore    string
	matcher   *patterns.Matcher

	files     []File
	dumps     []Dump
	notes     []string
	noteFiles []NoteFile
	warnings  []string
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithClock fixes the Generated timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.generated = now() }
}

// New creates an Assembler bound to root. The root must be an existing
// directory. The ignore set starts as patterns.Default.
func New(root string, s settings.Settings, opts ...Option) (*Assembler, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, prepfail.Validation("project root %s: %v", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, prepfail.NotFound(abs)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		real = abs
	}

	a := &Assembler{
		root:           abs,
		realRoot:       real,
		maxFileSize:    s.MaxFileSize,
		maxContextSize: s.MaxContextSize,
		treeMaxDepth:   s.TreeMaxDepth,
		treeMaxEntries: s.TreeMaxEntries,
		extAllowed:     s.IsExtensionAllowed,
		generated:      time.Now(),
	}
	a.SetIgnore(patterns.Default)
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Root returns the absolute project root.
func (a *Assembler) Root() string { return a.root }

// SetIgnore replaces the ignore set used for tree rendering. Patterns are
// normalized but not validated.
func (a *Assembler) SetIgnore(p string) {
	a.ignore = patterns.Join(patterns.Split(p))
	a.matcher = patterns.NewMatcher(a.ignore)
}

// SetMaxDepth overrides the tree depth. Values <= 0 are ignored.
func (a *Assembler) SetMaxDepth(depth int) {
	if depth > 0 {
		a.treeMaxDepth = depth
	}
}

// AddFile reads path and adds it as a file in focus. Adding a path that
// is already selected is a no-op and reports false.
func (a *Assembler) AddFile(path, note string) (bool, error) {
	abs, rel, err := a.Resolve(path)
	if err != nil {
		return false, err
	}
	for _, f := range a.files {
		if f.Path == rel {
			log.Debug().Str("path", rel).Msg("file already selected")
			return false, nil
		}
	}

	content, size, binary, err := a.read(abs)
	if err != nil {
		return false, err
	}
	if !binary && !a.extAllowed(abs) {
		a.warnings = append(a.warnings, "extension of "+rel+" is not in the allowed list")
	}
	a.files = append(a.files, File{Path: rel, Note: note, Content: content, Size: size, Binary: binary})
	return true, nil
}

// AddContextDumpFromFile reads a markdown file and adds it as a dump
// section. An empty title becomes "Context from <basename>". A path that
// is already a dump is a no-op and reports false, keeping the first title.
func (a *Assembler) AddContextDumpFromFile(path, title string) (bool, error) {
	abs, rel, err := a.Resolve(path)
	if err != nil {
		return false, err
	}
	if a.HasDump(rel) {
		log.Debug().Str("path", rel).Msg("context dump already included")
		return false, nil
	}

	content, _, binary, err := a.read(abs)
	if err != nil {
		return false, err
	}
	if binary {
		return false, prepfail.Validation("context dump %s is not a text file", rel)
	}
	if title == "" {
		title = DefaultDumpTitle(rel)
	}
	a.dumps = append(a.dumps, Dump{Path: rel, Title: title, Content: content})
	return true, nil
}

// HasDump reports whether a dump with the given root-relative path is
// already included. Comparison is exact.
func (a *Assembler) HasDump(rel string) bool {
	for _, d := range a.dumps {
		if d.Path != "" && d.Path == rel {
			return true
		}
	}
	return false
}

// AddGeneralNote appends free text verbatim.
func (a *Assembler) AddGeneralNote(text string) {
	a.notes = append(a.notes, text)
}

// AddNoteFile appends a whole markdown file after the general notes.
func (a *Assembler) AddNoteFile(path string) error {
	abs, rel, err := a.Resolve(path)
	if err != nil {
		return err
	}
	content, _, binary, err := a.read(abs)
	if err != nil {
		return err
	}
	if binary {
		return prepfail.Validation("note file %s is not a text file", rel)
	}
	a.noteFiles = append(a.noteFiles, NoteFile{Path: rel, Content: content})
	return nil
}

// Warnings returns informational messages collected while adding parts.
func (a *Assembler) Warnings() []string { return a.warnings }

// DefaultDumpTitle is the title used when a dump has none.
func DefaultDumpTitle(path string) string {
	return "Context from " + filepath.Base(filepath.FromSlash(path))
}

// read loads a regular file under the size ceiling. Binary content is
// reported, not returned.
func (a *Assembler) read(abs string) (string, int64, bool, error) {
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", 0, false, prepfail.NotFound(abs)
		}
		return "", 0, false, prepfail.IO("stat", abs, err)
	}
	if info.IsDir() {
		return "", 0, false, prepfail.Validation("%s is a directory", abs)
	}
	if !info.Mode().IsRegular() {
		return "", 0, false, prepfail.Validation("%s is not a regular file", abs)
	}
	if a.maxFileSize > 0 && info.Size() > a.maxFileSize {
		return "", info.Size(), false, prepfail.SizeLimit(abs, info.Size(), a.maxFileSize)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", 0, false, prepfail.IO("reading", abs, err)
	}
	if isBinary(data) {
		log.Debug().Str("path", abs).Msg("binary file, inserting placeholder")
		return BinaryPlaceholder, int64(len(data)), true, nil
	}
	return string(data), int64(len(data)), false, nil
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data)
}
