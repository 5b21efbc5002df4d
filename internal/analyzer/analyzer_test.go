package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HendryAvila/llm-prep/internal/patterns"
	"github.com/HendryAvila/llm-prep/internal/prepfail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAnalyzer() *Analyzer {
	return &Analyzer{BigDirThreshold: 100 * 1000 * 1000, MaxDepth: 6, Timeout: 10 * time.Second}
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func sparse(t *testing.T, path string, size int64) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
}

func TestAnalyze_JavaScriptWithHeavyNodeModules(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "package.json"))
	touch(t, filepath.Join(root, "src", "index.js"))
	sparse(t, filepath.Join(root, "node_modules", "big", "blob.bin"), 150*1000*1000)

	res, sug, err := testAnalyzer().Suggest(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, TypeJavaScript, res.ProjectType)
	assert.Contains(t, res.Indicators, "package.json")
	assert.Contains(t, res.BuildTools, "npm")
	require.Len(t, res.BigDirs, 1)
	assert.Equal(t, "node_modules", res.BigDirs[0].Name)
	assert.GreaterOrEqual(t, res.BigDirs[0].Bytes, int64(150*1000*1000))

	m := patterns.NewMatcher(patterns.Join(sug.Critical))
	assert.True(t, m.Match("node_modules"), "critical tier should cover node_modules: %v", sug.Critical)
}

func TestAnalyze_MissingRoot(t *testing.T) {
	_, err := testAnalyzer().Analyze(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, prepfail.ErrNotFound)
}

func TestAnalyze_RootIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	touch(t, file)
	_, err := testAnalyzer().Analyze(context.Background(), file)
	assert.ErrorIs(t, err, prepfail.ErrNotFound)
}

func TestAnalyze_EmptyProjectIsGeneral(t *testing.T) {
	res, err := testAnalyzer().Analyze(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, TypeGeneral, res.ProjectType)
	assert.Empty(t, res.Indicators)
	assert.NotNil(t, res.BigDirs)
	assert.NotNil(t, res.CompiledPresent)
}

func TestClassify_Priority(t *testing.T) {
	tests := []struct {
		name    string
		markers []string
		want    ProjectType
	}{
		{"python beats javascript", []string{"requirements.txt", "package.json"}, TypePython},
		{"javascript beats rust", []string{"Cargo.toml", "package.json"}, TypeJavaScript},
		{"rust beats go", []string{"go.mod", "Cargo.toml"}, TypeRust},
		{"tsconfig alone", []string{"tsconfig.json"}, TypeJavaScript},
		{"go", []string{"go.mod"}, TypeGo},
		{"java gradle", []string{"build.gradle.kts"}, TypeJava},
		{"dotnet glob", []string{"App.csproj"}, TypeDotnet},
		{"ruby", []string{"Gemfile"}, TypeRuby},
		{"php", []string{"composer.json"}, TypePHP},
		{"nothing", []string{"README.md"}, TypeGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, m := range tt.markers {
				touch(t, filepath.Join(root, m))
			}
			got, _ := Classify(root)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_GlobIndicatorsUseBasenames(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "B.csproj"))
	touch(t, filepath.Join(root, "A.csproj"))

	typ, ind := Classify(root)
	assert.Equal(t, TypeDotnet, typ)
	assert.Equal(t, []string{"A.csproj", "B.csproj"}, ind)
}

func TestClassify_RootWithGlobMetacharacters(t *testing.T) {
	for _, dir := range []string{"app[1]", "what?", "star*dir"} {
		t.Run(dir, func(t *testing.T) {
			root := filepath.Join(t.TempDir(), dir)
			touch(t, filepath.Join(root, "App.csproj"))
			touch(t, filepath.Join(root, "App.sln"))

			typ, ind := Classify(root)
			assert.Equal(t, TypeDotnet, typ)
			assert.Equal(t, []string{"App.csproj", "App.sln"}, ind)

			res, err := testAnalyzer().Analyze(context.Background(), root)
			require.NoError(t, err)
			assert.Contains(t, res.BuildTools, "msbuild")
		})
	}
}

func TestAnalyze_CompiledPresent(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "setup.py"))
	touch(t, filepath.Join(root, "pkg", "__pycache__", "mod.cpython-311.pyc"))
	touch(t, filepath.Join(root, "mypkg.egg-info", "PKG-INFO"))
	touch(t, filepath.Join(root, "native", "lib.o"))
	touch(t, filepath.Join(root, ".git", "objects", "skip.class"))

	res, err := testAnalyzer().Analyze(context.Background(), root)
	require.NoError(t, err)

	assert.Contains(t, res.CompiledPresent, ".pyc")
	assert.Contains(t, res.CompiledPresent, "__pycache__")
	assert.Contains(t, res.CompiledPresent, "egg-info")
	assert.Contains(t, res.CompiledPresent, ".o")
	assert.NotContains(t, res.CompiledPresent, ".class", "VCS directories are not scanned")
}

func TestAnalyze_CompiledScanRespectsDepth(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "b", "c", "deep.class"))

	a := testAnalyzer()
	a.MaxDepth = 1
	res, err := a.Analyze(context.Background(), root)
	require.NoError(t, err)
	assert.NotContains(t, res.CompiledPresent, ".class")
}

func TestAnalyze_SymlinkCycleTerminates(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "loop", "file.txt"))
	if err := os.Symlink(filepath.Join(root, "loop"), filepath.Join(root, "loop", "self")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := testAnalyzer().Analyze(context.Background(), root)
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Analyze did not terminate on a symlink cycle")
	}
}

func TestAnalyze_UnreadableSubdirIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	touch(t, filepath.Join(locked, "inner.txt"))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	_, err := testAnalyzer().Analyze(context.Background(), root)
	assert.NoError(t, err)
}

func TestAnalyze_BigDirsSortedDescending(t *testing.T) {
	root := t.TempDir()
	sparse(t, filepath.Join(root, "small", "f"), 20)
	sparse(t, filepath.Join(root, "mid", "f"), 60)
	sparse(t, filepath.Join(root, "huge", "f"), 90)

	a := testAnalyzer()
	a.BigDirThreshold = 50
	res, err := a.Analyze(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, res.BigDirs, 2)
	assert.Equal(t, "huge", res.BigDirs[0].Name)
	assert.Equal(t, "mid", res.BigDirs[1].Name)
}

func TestSuggestFrom_TiersAreDisjoint(t *testing.T) {
	for _, pt := range append([]ProjectType{TypeGeneral}, typesOf(ProjectTypes)...) {
		t.Run(string(pt), func(t *testing.T) {
			a := &Analysis{
				ProjectType:     pt,
				BigDirs:         []BigDir{{Name: "node_modules", Bytes: 1}, {Name: "target", Bytes: 1}, {Name: ".git", Bytes: 1}},
				CompiledPresent: []string{".pyc", "__pycache__", "egg-info", ".class", ".exe"},
			}
			s := SuggestFrom(a)

			seen := map[string]string{}
			for tier, list := range map[string][]string{
				TierCritical:    s.Critical,
				TierRecommended: s.Recommended,
				TierOptional:    s.Optional,
			} {
				for _, p := range list {
					key := strings.ToLower(p)
					prev, dup := seen[key]
					assert.False(t, dup, "pattern %q in both %s and %s", p, prev, tier)
					seen[key] = tier
				}
			}
		})
	}
}

func TestSuggestFrom_CriticalClaimsFirst(t *testing.T) {
	s := SuggestFrom(&Analysis{
		ProjectType: TypeJavaScript,
		BigDirs:     []BigDir{{Name: "node_modules", Bytes: 1}},
	})
	assert.Contains(t, s.Critical, "node_modules")
	assert.NotContains(t, s.Recommended, "node_modules")
	assert.Contains(t, s.Critical, ".git")
	assert.Contains(t, s.Optional, ".DS_Store")
}

func TestSuggestFrom_CompiledMarkersBecomePatterns(t *testing.T) {
	s := SuggestFrom(&Analysis{
		ProjectType:     TypeGeneral,
		CompiledPresent: []string{".o", "wheel", "dist-info"},
	})
	assert.Contains(t, s.Recommended, "*.o")
	assert.Contains(t, s.Recommended, "*.whl")
	assert.Contains(t, s.Recommended, "*.dist-info")
}

func TestSuggestion_Auto(t *testing.T) {
	s := Suggestion{Critical: []string{"a"}, Recommended: []string{"b"}, Optional: []string{"c"}}
	assert.Equal(t, []string{"a", "b"}, s.Auto())
}

func TestFormatReport(t *testing.T) {
	a := &Analysis{
		Root:        "/p",
		ProjectType: TypeGo,
		Indicators:  []string{"go.mod"},
		BuildTools:  []string{"go"},
		BigDirs:     []BigDir{{Name: "vendor", Bytes: 150 * 1000 * 1000}},
	}
	s := SuggestFrom(a)
	out := FormatReport(a, &s)

	for _, want := range []string{"Detected type: go", "go.mod", "vendor ~ 150 MB", "critical:", "recommended:", "optional:"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "Compiled/binary footprints found:\n  (none)")
}

func typesOf(tms []TypeMarkers) []ProjectType {
	out := make([]ProjectType, 0, len(tms))
	for _, tm := range tms {
		out = append(out, tm.Type)
	}
	return out
}
