package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/HendryAvila/llm-prep/internal/config"
	prepserver "github.com/HendryAvila/llm-prep/internal/server"
	"github.com/HendryAvila/llm-prep/internal/tools"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type prepareFlags struct {
	files       []string
	notes       []string
	dumps       []string
	noteFiles   []string
	output      string
	root        string
	treeIgnore  string
	depth       int
	dryRun      bool
	noDefaults  bool
	description string
}

func prepareCmd(a *app) *cobra.Command {
	f := &prepareFlags{}
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Build a context document",
		Long: `Build a markdown context document from files, context dumps and notes.

Examples:
  llmprep prepare -f src/app.py:"entry point" -f src/db.py -n "fails on retry"
  llmprep prepare -d .llm_prep_notes/debug_notes.md:"Debug Analysis" -o bug123
  llmprep prepare -f main.go --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.prepare(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringArrayVarP(&f.files, "file", "f", nil, "file to include, as path[:note] (repeatable)")
	fl.StringArrayVarP(&f.notes, "note", "n", nil, "general note (repeatable)")
	fl.StringArrayVarP(&f.dumps, "dump", "d", nil, "markdown context dump, as file[:title] (repeatable)")
	fl.StringArrayVar(&f.noteFiles, "note-file", nil, "markdown file appended to the notes section (repeatable)")
	fl.StringVarP(&f.output, "output", "o", "", "output file name (default: context_YYYYMMDD_HHMMSS.md)")
	fl.StringVarP(&f.root, "root", "r", ".", "project root")
	fl.StringVar(&f.treeIgnore, "tree-ignore", "", "pipe-separated ignore patterns overriding the project config")
	fl.IntVar(&f.depth, "depth", 0, "maximum tree depth (default from settings)")
	fl.BoolVar(&f.dryRun, "dry-run", false, "show what would be included without writing anything")
	fl.BoolVar(&f.noDefaults, "no-defaults", false, "skip the project's default context dumps")
	fl.StringVar(&f.description, "description", "", "short description recorded in the history")
	return cmd
}

func (a *app) prepare(cmd *cobra.Command, f *prepareFlags) error {
	root, err := a.settings.ResolveProjectPath(f.root)
	if err != nil {
		return err
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("project root %s is not a directory", root)
	}

	req := tools.PrepareRequest{
		Root:        root,
		Notes:       f.notes,
		NoteFiles:   f.noteFiles,
		Output:      f.output,
		Depth:       f.depth,
		DryRun:      f.dryRun,
		SkipDefault: f.noDefaults,
		Description: f.description,
	}
	for _, v := range f.files {
		p, note := splitPair(v)
		req.Files = append(req.Files, tools.FileSelection{Path: p, Note: note})
	}
	for _, v := range f.dumps {
		p, title := splitPair(v)
		req.Dumps = append(req.Dumps, tools.DumpSource{File: p, Title: title})
	}
	if strings.TrimSpace(f.treeIgnore) != "" {
		req.TreeIgnore = &f.treeIgnore
	}

	led, cleanup := prepserver.OpenLedger(a.settings)
	defer cleanup()

	p := tools.NewPreparer(a.settings, config.NewFileStore(), led)
	res, err := p.Prepare(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.DryRun {
		fmt.Fprintf(out, "Dry run: would write %s (%s, ~%s tokens)\n\n",
			res.Path, humanize.Bytes(uint64(res.Bytes)), humanize.Comma(int64(res.Tokens)))
	} else {
		fmt.Fprintf(out, "Context document created: %s (%s, ~%s tokens)\n\n",
			res.Path, humanize.Bytes(uint64(res.Bytes)), humanize.Comma(int64(res.Tokens)))
	}
	if res.LedgerID != "" {
		fmt.Fprintf(out, "Ledger ID: %s\n\n", res.LedgerID)
	}
	fmt.Fprintln(out, res.Manifest.String())
	if len(res.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped missing default dumps: %s\n", strings.Join(res.Skipped, ", "))
	}
	return nil
}

// splitPair splits "path:text" at the first colon. A Windows drive prefix
// such as C:\ is kept as part of the path.
func splitPair(v string) (string, string) {
	offset := 0
	if len(v) >= 3 && v[1] == ':' && (v[2] == '\\' || v[2] == '/') {
		offset = 2
	}
	i := strings.IndexByte(v[offset:], ':')
	if i < 0 {
		return strings.TrimSpace(v), ""
	}
	i += offset
	return strings.TrimSpace(v[:i]), strings.TrimSpace(v[i+1:])
}
