package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/llm-prep/internal/assembler"
	"github.com/HendryAvila/llm-prep/internal/config"
	"github.com/HendryAvila/llm-prep/internal/ledger"
	"github.com/HendryAvila/llm-prep/internal/prepfail"
	"github.com/HendryAvila/llm-prep/internal/settings"
	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
)

// PrepareRequest is one context-document build.
type PrepareRequest struct {
	Root      string
	Files     []FileSelection
	Dumps     []DumpSource
	Notes     []string
	NoteFiles []string
	Output    string
	// TreeIgnore overrides the stored ignore set when it is non-nil and
	// not blank.
	TreeIgnore  *string
	Depth       int
	DryRun      bool
	SkipDefault bool
	Description string
}

// PrepareResult reports a build or a dry-run preview.
type PrepareResult struct {
	Path     string
	Bytes    int64
	Tokens   int
	Manifest assembler.Manifest
	Skipped  []string
	DryRun   bool
	LedgerID string
}

// Preparer runs context-document builds. It is shared by the
// prepare_context tool and the command-line interface.
type Preparer struct {
	settings settings.Settings
	store    config.Store
	ledger   *ledger.Ledger
}

// NewPreparer creates a Preparer. led may be nil.
func NewPreparer(s settings.Settings, store config.Store, led *ledger.Ledger) *Preparer {
	return &Preparer{settings: s, store: store, ledger: led}
}

// Prepare builds the document described by r. The project config is only
// written after the document has been written successfully, and a dry run
// writes nothing.
func (p *Preparer) Prepare(ctx context.Context, r PrepareRequest) (*PrepareResult, error) {
	cfg, err := p.store.Load(r.Root)
	if err != nil {
		return nil, err
	}
	outPath, err := outputPath(r.Root, cfg.OutputDir, r.Output)
	if err != nil {
		return nil, err
	}

	a, err := assembler.New(r.Root, p.settings)
	if err != nil {
		return nil, err
	}
	ignore := cfg.TreeIgnore
	if r.TreeIgnore != nil && strings.TrimSpace(*r.TreeIgnore) != "" {
		ignore = *r.TreeIgnore
	}
	a.SetIgnore(ignore)
	a.SetMaxDepth(r.Depth)

	for _, f := range r.Files {
		if _, err := a.AddFile(f.Path, f.Note); err != nil {
			return nil, fmt.Errorf("file %s: %w", f.Path, err)
		}
	}

	// Explicit dumps go first so a default naming the same path is
	// skipped and the explicit title wins.
	for _, d := range r.Dumps {
		if _, err := a.AddContextDumpFromFile(d.File, d.Title); err != nil {
			return nil, fmt.Errorf("context dump %s: %w", d.File, err)
		}
	}
	var skipped []string
	if !r.SkipDefault {
		for _, d := range cfg.DefaultContextDumps {
			if _, err := a.AddContextDumpFromFile(d.File, d.Title); err != nil {
				if isNotFound(err) {
					skipped = append(skipped, d.File)
					log.Debug().Str("file", d.File).Msg("default context dump missing, skipped")
					continue
				}
				return nil, fmt.Errorf("default context dump %s: %w", d.File, err)
			}
		}
	}

	for _, n := range r.Notes {
		a.AddGeneralNote(n)
	}
	for _, nf := range r.NoteFiles {
		if err := a.AddNoteFile(nf); err != nil {
			return nil, fmt.Errorf("note file %s: %w", nf, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.DryRun {
		doc := a.Render()
		return &PrepareResult{
			Path:     outPath,
			Bytes:    int64(len(doc)),
			Tokens:   assembler.CountTokens(doc),
			Manifest: a.Manifest(),
			Skipped:  skipped,
			DryRun:   true,
		}, nil
	}

	saved, err := a.Save(outPath)
	if err != nil {
		return nil, err
	}

	desc := r.Description
	if desc == "" {
		desc = summarize(saved.Manifest)
	}
	config.RecordGeneration(cfg, displayPath(r.Root, outPath), desc)
	if err := p.store.Save(r.Root, cfg); err != nil {
		return nil, err
	}

	res := &PrepareResult{
		Path:     outPath,
		Bytes:    saved.Bytes,
		Tokens:   saved.Tokens,
		Manifest: saved.Manifest,
		Skipped:  skipped,
	}
	if p.ledger != nil {
		id, err := p.ledger.Record(ledgerEntry(r.Root, outPath, desc, saved))
		if err != nil {
			log.Warn().Err(err).Msg("could not record document in ledger")
		}
		res.LedgerID = id
	}
	return res, nil
}

// outputPath validates the output name and places it in the configured
// output directory. An empty name becomes context_YYYYMMDD_HHMMSS.md.
func outputPath(root, outputDir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "context_" + timeNow().Format("20060102_150405")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", prepfail.Validation("output name %q must not contain path separators", name)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".md") {
		name += ".md"
	}
	if outputDir == "" {
		outputDir = config.DefaultOutputDir
	}
	dir := filepath.FromSlash(outputDir)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return filepath.Join(dir, name), nil
}

func summarize(m assembler.Manifest) string {
	return fmt.Sprintf("%d files, %d context documents, %d notes",
		len(m.Files), len(m.Dumps), m.Notes+len(m.NoteFiles))
}

func ledgerEntry(root, out, desc string, saved *assembler.SaveResult) ledger.Entry {
	e := ledger.Entry{
		Project:     root,
		Output:      out,
		Description: desc,
		Bytes:       saved.Bytes,
		Tokens:      saved.Tokens,
	}
	for _, f := range saved.Manifest.Files {
		e.Files = append(e.Files, f.Path)
	}
	for _, d := range saved.Manifest.Dumps {
		if d.Path != "" {
			e.Dumps = append(e.Dumps, d.Path)
		}
	}
	return e
}

// --- prepare_context tool ---

// PrepareContextTool handles the prepare_context MCP tool.
type PrepareContextTool struct {
	settings settings.Settings
	preparer *Preparer
}

// NewPrepareContextTool creates a PrepareContextTool.
func NewPrepareContextTool(s settings.Settings, p *Preparer) *PrepareContextTool {
	return &PrepareContextTool{settings: s, preparer: p}
}

// Definition returns the MCP tool definition for registration.
func (t *PrepareContextTool) Definition() mcp.Tool {
	return mcp.NewTool("prepare_context",
		mcp.WithDescription(
			"Assemble a markdown context document for an LLM session: a filtered project tree, "+
				"selected files with notes, context dumps from markdown files, and general notes. "+
				"Project default context dumps are included unless use_defaults is false. "+
				"Use dry_run to preview what would be included without writing anything.",
		),
		mcp.WithString("project_path",
			mcp.Description("Project root (default: nearest directory with .llm_prep_config.json, else cwd)"),
		),
		mcp.WithArray("files",
			mcp.Description("Files in focus: paths, or objects {path, note} (synonyms: file/filepath, notes/comment/description)"),
			mcp.Items(map[string]any{}),
		),
		mcp.WithArray("context_dumps",
			mcp.Description("Markdown files to inline as sections: paths, or objects {file, title} (synonyms: path, name)"),
			mcp.Items(map[string]any{}),
		),
		mcp.WithArray("general_notes",
			mcp.Description("Free-text notes appended at the end"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("note_files",
			mcp.Description("Markdown files appended whole after the general notes"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("output_name",
			mcp.Description("Output file name inside the configured output directory (default: context_YYYYMMDD_HHMMSS.md)"),
		),
		mcp.WithString("tree_ignore",
			mcp.Description("Pipe-separated ignore patterns overriding the project's stored set for this document only"),
		),
		mcp.WithNumber("tree_depth",
			mcp.Description("Maximum depth of the project tree"),
		),
		mcp.WithString("description",
			mcp.Description("Short description stored in the history and ledger"),
		),
		mcp.WithBoolean("use_defaults",
			mcp.Description("Include the project's default context dumps (default: true)"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Preview the inclusion list without writing (default: false)"),
		),
	)
}

// Handle processes the prepare_context tool call.
func (t *PrepareContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := projectRoot(t.settings, req)
	if err != nil {
		return failure("prepare_context", err), nil
	}

	args := req.GetArguments()
	files, err := parseFileSelections(args["files"])
	if err != nil {
		return failure("prepare_context", err), nil
	}
	dumps, err := parseDumpSources(args["context_dumps"])
	if err != nil {
		return failure("prepare_context", err), nil
	}
	notes, err := parseStrings(args["general_notes"])
	if err != nil {
		return failure("prepare_context", err), nil
	}
	noteFiles, err := parseStrings(args["note_files"])
	if err != nil {
		return failure("prepare_context", err), nil
	}

	r := PrepareRequest{
		Root:        root,
		Files:       files,
		Dumps:       dumps,
		Notes:       notes,
		NoteFiles:   noteFiles,
		Output:      req.GetString("output_name", ""),
		Depth:       intArg(req, "tree_depth", 0),
		DryRun:      boolArg(req, "dry_run", false),
		SkipDefault: !boolArg(req, "use_defaults", true),
		Description: req.GetString("description", ""),
	}
	if ti := req.GetString("tree_ignore", ""); strings.TrimSpace(ti) != "" {
		r.TreeIgnore = &ti
	}

	res, err := t.preparer.Prepare(ctx, r)
	if err != nil {
		return failure("prepare_context", err), nil
	}
	return mcp.NewToolResultText(formatPrepareResult(root, res)), nil
}

func formatPrepareResult(root string, res *PrepareResult) string {
	var sb strings.Builder
	if res.DryRun {
		sb.WriteString("## Dry Run: Context Preview\n\n")
		fmt.Fprintf(&sb, "**Would write:** %s\n", displayPath(root, res.Path))
		fmt.Fprintf(&sb, "**Estimated size:** %s (~%s tokens)\n\n",
			humanize.Bytes(uint64(res.Bytes)), humanize.Comma(int64(res.Tokens)))
	} else {
		sb.WriteString("## ✅ Context Document Created\n\n")
		fmt.Fprintf(&sb, "**Path:** %s\n", res.Path)
		fmt.Fprintf(&sb, "**Size:** %s (%s bytes, ~%s tokens)\n",
			humanize.Bytes(uint64(res.Bytes)), humanize.Comma(res.Bytes), humanize.Comma(int64(res.Tokens)))
		if res.LedgerID != "" {
			fmt.Fprintf(&sb, "**Ledger ID:** %s\n", res.LedgerID)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("### Included\n\n")
	sb.WriteString(res.Manifest.String())
	sb.WriteString("\n")
	if len(res.Skipped) > 0 {
		fmt.Fprintf(&sb, "\nSkipped missing default context dumps: %s\n", strings.Join(res.Skipped, ", "))
	}
	return sb.String()
}
