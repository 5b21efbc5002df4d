// Package analyzer classifies a project tree and proposes tiered ignore
// patterns for the context document.
//
// The analysis is structural only: marker files at the root decide the
// project type, a bounded walk finds compiled artifacts, and a bounded,
// cycle-safe size scan of the top-level directories finds the ones large
// enough to blow the document budget. Nothing is cached between calls.
package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/HendryAvila/llm-prep/internal/prepfail"
	"github.com/HendryAvila/llm-prep/internal/settings"
	"github.com/rs/zerolog/log"
)

// ProjectType is the detected ecosystem tag.
type ProjectType string

const (
	TypePython     ProjectType = "python"
	TypeJavaScript ProjectType = "javascript"
	TypeRust       ProjectType = "rust"
	TypeGo         ProjectType = "go"
	TypeJava       ProjectType = "java"
	TypeDotnet     ProjectType = "dotnet"
	TypeRuby       ProjectType = "ruby"
	TypePHP        ProjectType = "php"
	TypeGeneral    ProjectType = "general"
)

// TypeMarkers pairs a project type with the root files that identify it.
type TypeMarkers struct {
	Type    ProjectType
	Markers []string
}

// ProjectTypes is the classification table. Order is priority: the first
// entry with any marker present wins. Markers are matched against the
// names directly under the root, so '*' markers are single-level globs.
var ProjectTypes = []TypeMarkers{
	{TypePython, []string{"requirements.txt", "setup.py", "pyproject.toml", "Pipfile", "setup.cfg"}},
	{TypeJavaScript, []string{"package.json", "yarn.lock", "package-lock.json", "pnpm-lock.yaml", "tsconfig.json"}},
	{TypeRust, []string{"Cargo.toml"}},
	{TypeGo, []string{"go.mod"}},
	{TypeJava, []string{"pom.xml", "build.gradle", "build.gradle.kts"}},
	{TypeDotnet, []string{"*.csproj", "*.sln", "*.fsproj"}},
	{TypeRuby, []string{"Gemfile"}},
	{TypePHP, []string{"composer.json"}},
}

// buildTools maps root markers to the build tool they imply.
var buildTools = []struct {
	marker string
	tool   string
}{
	{"Makefile", "make"},
	{"CMakeLists.txt", "cmake"},
	{"Dockerfile", "docker"},
	{"docker-compose.yml", "docker-compose"},
	{"docker-compose.yaml", "docker-compose"},
	{"package.json", "npm"},
	{"yarn.lock", "yarn"},
	{"pnpm-lock.yaml", "pnpm"},
	{"Pipfile", "pipenv"},
	{"poetry.lock", "poetry"},
	{"setup.py", "setuptools"},
	{"Cargo.toml", "cargo"},
	{"go.mod", "go"},
	{"pom.xml", "maven"},
	{"build.gradle", "gradle"},
	{"build.gradle.kts", "gradle"},
	{"*.sln", "msbuild"},
	{"Gemfile", "bundler"},
	{"composer.json", "composer"},
	{"Taskfile.yml", "task"},
	{"justfile", "just"},
}

// BigDir is a top-level directory whose recursive size exceeds the
// threshold.
type BigDir struct {
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

// Analysis is a read-only snapshot of one project root.
type Analysis struct {
	Root            string      `json:"root"`
	ProjectType     ProjectType `json:"project_type"`
	Indicators      []string    `json:"indicators"`
	BuildTools      []string    `json:"build_tools"`
	BigDirs         []BigDir    `json:"big_dirs"`
	CompiledPresent []string    `json:"compiled_present"`
	// Truncated is set when the scan hit its deadline and sizes or
	// compiled markers may be incomplete.
	Truncated bool `json:"truncated,omitempty"`
}

// Analyzer holds the scan bounds. It is safe for concurrent use.
type Analyzer struct {
	BigDirThreshold int64
	MaxDepth        int
	Timeout         time.Duration
}

// New creates an Analyzer from the process settings.
func New(s settings.Settings) *Analyzer {
	return &Analyzer{
		BigDirThreshold: s.BigDirThreshold,
		MaxDepth:        s.ScanMaxDepth,
		Timeout:         s.ScanTimeout,
	}
}

// Analyze inspects root. A missing or unreadable root fails with a
// prepfail NotFound error; unreadable subdirectories are skipped.
func (a *Analyzer) Analyze(ctx context.Context, root string) (*Analysis, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, prepfail.NotFound(root)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, prepfail.NotFound(root)
	}

	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	projectType, indicators := Classify(root)
	res := &Analysis{
		Root:        root,
		ProjectType: projectType,
		Indicators:  indicators,
		BuildTools:  detectBuildTools(root),
	}

	bigDirs, sizeTruncated := a.scanBigDirs(ctx, root, entries)
	compiled, compiledTruncated := a.scanCompiled(ctx, root)
	res.BigDirs = bigDirs
	res.CompiledPresent = compiled
	res.Truncated = sizeTruncated || compiledTruncated

	log.Debug().
		Str("root", root).
		Str("type", string(projectType)).
		Int("big_dirs", len(bigDirs)).
		Bool("truncated", res.Truncated).
		Msg("project analyzed")

	return res, nil
}

// Classify walks ProjectTypes in order and returns the first type with a
// marker present, together with the markers that matched.
func Classify(root string) (ProjectType, []string) {
	entries := rootEntries(root)
	for _, tm := range ProjectTypes {
		var found []string
		for _, m := range tm.Markers {
			found = append(found, matchMarker(entries, m)...)
		}
		if len(found) > 0 {
			return tm.Type, found
		}
	}
	return TypeGeneral, []string{}
}

// rootEntries lists the names directly under root. Markers are matched
// against these names so metacharacters in root itself never act as a glob.
func rootEntries(root string) []string {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		log.Debug().Err(err).Str("root", root).Msg("listing root for markers")
		return nil
	}
	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		names = append(names, e.Name())
	}
	return names
}

// matchMarker resolves one marker against the root listing and returns the
// matching names, sorted. Wildcard markers are single-level globs.
func matchMarker(entries []string, marker string) []string {
	var names []string
	for _, name := range entries {
		if ok, err := filepath.Match(marker, name); err == nil && ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func detectBuildTools(root string) []string {
	entries := rootEntries(root)
	seen := map[string]bool{}
	tools := []string{}
	for _, bt := range buildTools {
		if seen[bt.tool] {
			continue
		}
		if len(matchMarker(entries, bt.marker)) > 0 {
			seen[bt.tool] = true
			tools = append(tools, bt.tool)
		}
	}
	return tools
}
