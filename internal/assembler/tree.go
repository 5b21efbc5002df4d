package assembler

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HendryAvila/llm-prep/internal/patterns"
	"github.com/rs/zerolog/log"
)

const focusMark = " [IN FOCUS]"

// renderTree draws the project tree under the ignore set. Matched
// directories are listed but not expanded, matched files are omitted,
// and version-control directories never appear. Symlinked directories
// are shown but not followed.
//
// Files in focus stay visible even when matched: a matched directory on
// the way to one is expanded along that path only.
func (a *Assembler) renderTree() string {
	t := treeFocus{files: map[string]bool{}, dirs: map[string]bool{}}
	for _, f := range a.files {
		t.files[f.Path] = true
		for d := path.Dir(f.Path); d != "." && d != "/"; d = path.Dir(d) {
			t.dirs[d] = true
		}
	}

	var sb strings.Builder
	sb.WriteString(filepath.Base(a.root) + "/\n")
	a.walkTree(&sb, a.root, "", "", 1, t, false)
	return sb.String()
}

// treeFocus holds the focus files and every directory above them.
type treeFocus struct {
	files map[string]bool
	dirs  map[string]bool
}

// walkTree renders one directory. With focusOnly set, only entries on the
// way to a focus file are listed.
func (a *Assembler) walkTree(sb *strings.Builder, dir, rel, prefix string, depth int, focus treeFocus, focusOnly bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debug().Err(err).Str("dir", dir).Msg("tree: skipping unreadable directory")
		return
	}

	type node struct {
		name    string
		rel     string
		isDir   bool
		matched bool
	}
	nodes := make([]node, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if patterns.ContainsFold(patterns.Builtin, name) {
			continue
		}
		r := path.Join(rel, name)
		if focusOnly && !focus.files[r] && !focus.dirs[r] {
			continue
		}
		matched := a.matcher.Match(r)
		isDir := e.IsDir()
		if matched && !isDir && !focus.files[r] {
			continue
		}
		nodes = append(nodes, node{name: name, rel: r, isDir: isDir, matched: matched})
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].isDir != nodes[j].isDir {
			return nodes[i].isDir
		}
		return strings.ToLower(nodes[i].name) < strings.ToLower(nodes[j].name)
	})

	hidden := 0
	if a.treeMaxEntries > 0 && len(nodes) > a.treeMaxEntries {
		hidden = len(nodes) - a.treeMaxEntries
		nodes = nodes[:a.treeMaxEntries]
	}

	for i, n := range nodes {
		last := i == len(nodes)-1 && hidden == 0
		connector, childPrefix := "├── ", prefix+"│   "
		if last {
			connector, childPrefix = "└── ", prefix+"    "
		}

		label := n.name
		if n.isDir {
			label += "/"
		}
		if focus.files[n.rel] {
			label += focusMark
		}
		sb.WriteString(prefix + connector + label + "\n")

		if !n.isDir || depth >= a.treeMaxDepth {
			continue
		}
		switch {
		case !n.matched && !focusOnly:
			a.walkTree(sb, filepath.Join(dir, n.name), n.rel, childPrefix, depth+1, focus, false)
		case focus.dirs[n.rel]:
			a.walkTree(sb, filepath.Join(dir, n.name), n.rel, childPrefix, depth+1, focus, true)
		}
	}
	if hidden > 0 {
		fmt.Fprintf(sb, "%s└── ... (%d more)\n", prefix, hidden)
	}
}
