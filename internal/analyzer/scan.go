package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// sizeMaxDepth bounds the recursive size scan. It is deeper than the
// compiled-artifact scan because dependency caches nest heavily.
const sizeMaxDepth = 64

// sizeWorkers is the number of top-level directories sized in parallel.
const sizeWorkers = 4

// vcsDirs are never descended into by the compiled-artifact scan.
var vcsDirs = map[string]bool{".git": true, ".hg": true, ".svn": true}

// compiledExts maps file extensions to the marker reported for them.
var compiledExts = map[string]string{
	".pyc":   ".pyc",
	".pyo":   ".pyo",
	".o":     ".o",
	".obj":   ".obj",
	".class": ".class",
	".jar":   ".jar",
	".so":    ".so",
	".dll":   ".dll",
	".dylib": ".dylib",
	".exe":   ".exe",
	".a":     ".a",
	".wasm":  ".wasm",
	".rlib":  ".rlib",
	".pdb":   ".pdb",
}

// compiledDirSuffixes maps directory name suffixes to their marker.
var compiledDirSuffixes = []struct {
	suffix string
	marker string
}{
	{".egg-info", "egg-info"},
	{".dist-info", "dist-info"},
	{".whl", "wheel"},
}

// scanBigDirs sizes every top-level directory of root and returns those
// over the threshold, largest first.
func (a *Analyzer) scanBigDirs(ctx context.Context, root string, entries []os.DirEntry) ([]BigDir, bool) {
	var (
		mu        sync.Mutex
		big       []BigDir
		truncated bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sizeWorkers)

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		g.Go(func() error {
			s := newSizer(gctx)
			size := s.dirSize(filepath.Join(root, name), 0)

			mu.Lock()
			defer mu.Unlock()
			if s.truncated {
				truncated = true
			}
			if size > a.BigDirThreshold {
				big = append(big, BigDir{Name: name, Bytes: size})
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(big, func(i, j int) bool {
		if big[i].Bytes != big[j].Bytes {
			return big[i].Bytes > big[j].Bytes
		}
		return big[i].Name < big[j].Name
	})
	if big == nil {
		big = []BigDir{}
	}
	return big, truncated
}

// sizer computes recursive directory sizes. Symlinked directories are
// followed once; the visited set of canonical paths breaks cycles.
type sizer struct {
	ctx       context.Context
	visited   map[string]bool
	truncated bool
}

func newSizer(ctx context.Context) *sizer {
	return &sizer{ctx: ctx, visited: make(map[string]bool)}
}

func (s *sizer) dirSize(dir string, depth int) int64 {
	if depth > sizeMaxDepth {
		s.truncated = true
		return 0
	}
	if s.ctx.Err() != nil {
		s.truncated = true
		return 0
	}
	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return 0
	}
	if s.visited[canonical] {
		return 0
	}
	s.visited[canonical] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debug().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
		return 0
	}

	var total int64
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.IsDir() {
				total += s.dirSize(path, depth+1)
			} else {
				total += info.Size()
			}
			continue
		}
		if e.IsDir() {
			total += s.dirSize(path, depth+1)
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total
}

// scanCompiled walks root to MaxDepth and reports which compiled-artifact
// signatures occur anywhere inside it.
func (a *Analyzer) scanCompiled(ctx context.Context, root string) ([]string, bool) {
	found := map[string]bool{}
	visited := map[string]bool{}
	truncated := false
	total := len(uniqueMarkers())

	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		if depth > a.MaxDepth || len(found) == total {
			return
		}
		if ctx.Err() != nil {
			truncated = true
			return
		}
		canonical, err := filepath.EvalSymlinks(dir)
		if err != nil || visited[canonical] {
			return
		}
		visited[canonical] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Debug().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
			return
		}
		for _, e := range entries {
			name := e.Name()
			isDir := e.IsDir()
			if e.Type()&os.ModeSymlink != 0 {
				info, err := os.Stat(filepath.Join(dir, name))
				if err != nil {
					continue
				}
				isDir = info.IsDir()
			}
			if isDir {
				if vcsDirs[name] {
					continue
				}
				if m := dirMarker(name); m != "" {
					found[m] = true
				}
				walk(filepath.Join(dir, name), depth+1)
				continue
			}
			if m, ok := compiledExts[strings.ToLower(filepath.Ext(name))]; ok {
				found[m] = true
			}
			if strings.HasSuffix(strings.ToLower(name), ".whl") {
				found["wheel"] = true
			}
		}
	}
	walk(root, 0)

	out := make([]string, 0, len(found))
	for m := range found {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, truncated
}

func dirMarker(name string) string {
	lower := strings.ToLower(name)
	for _, s := range compiledDirSuffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.marker
		}
	}
	if lower == "__pycache__" {
		return "__pycache__"
	}
	return ""
}

func uniqueMarkers() map[string]bool {
	m := map[string]bool{"__pycache__": true}
	for _, v := range compiledExts {
		m[v] = true
	}
	for _, s := range compiledDirSuffixes {
		m[s.marker] = true
	}
	return m
}
