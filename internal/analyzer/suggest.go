package analyzer

import (
	"context"
	"strings"
)

// Tier names, in precedence order.
const (
	TierCritical    = "critical"
	TierRecommended = "recommended"
	TierOptional    = "optional"
)

// Suggestion holds three disjoint tiers of proposed ignore patterns.
type Suggestion struct {
	Critical    []string `json:"critical"`
	Recommended []string `json:"recommended"`
	Optional    []string `json:"optional"`
}

// criticalPatterns are version-control and credential locations.
var criticalPatterns = []string{
	".git", ".svn", ".hg",
	".env", ".env.*",
	"*.pem", "*.key", "*.p12",
	".ssh", ".aws", ".gnupg",
	"id_rsa*", "credentials.json", "secrets",
}

// recommendedPatterns are the ecosystem caches and build outputs.
var recommendedPatterns = map[ProjectType][]string{
	TypePython: {
		"__pycache__", "*.pyc", "*.pyo", "*.pyd", ".Python",
		".venv", "venv", "env", "ENV",
		".pytest_cache", ".mypy_cache", ".ruff_cache", ".tox",
		".coverage", "htmlcov", "*.egg-info", "dist", "build",
		".ipynb_checkpoints", "pip-log.txt",
	},
	TypeJavaScript: {
		"node_modules", "bower_components", ".npm", ".yarn", ".pnp.js",
		"coverage", ".nyc_output", ".next", ".nuxt", ".cache",
		".turbo", ".parcel-cache", "dist", "build", "out",
	},
	TypeRust:   {"target", "*.rlib", "*.rmeta"},
	TypeGo:     {"vendor", "bin", "*.exe", "*.test", "*.out", "coverage.txt"},
	TypeJava:   {"target", "build", ".gradle", "out", "*.class", "*.jar", "*.war"},
	TypeDotnet: {"bin", "obj", "packages", ".vs", "*.dll", "*.exe", "*.pdb", "*.user"},
	TypeRuby:   {"vendor/bundle", ".bundle", "log", "tmp", "coverage", ".yardoc"},
	TypePHP:    {"vendor", ".phpunit.result.cache", "storage/logs", "bootstrap/cache"},
	TypeGeneral: {
		"dist", "build", "out", "tmp",
	},
}

// optionalPatterns are editor, OS and local-state hygiene.
var optionalPatterns = []string{
	".DS_Store", "Thumbs.db", "desktop.ini",
	"*.swp", "*.swo", "*~", "*.tmp",
	".idea", ".vscode", ".vs",
	"*.log", "logs",
	"*.sqlite", "*.db",
	".terraform", ".serverless",
}

// compiledPattern turns a compiled-artifact marker into an ignore pattern.
func compiledPattern(marker string) string {
	switch marker {
	case "__pycache__":
		return "__pycache__"
	case "egg-info":
		return "*.egg-info"
	case "dist-info":
		return "*.dist-info"
	case "wheel":
		return "*.whl"
	}
	if strings.HasPrefix(marker, ".") {
		return "*" + marker
	}
	return marker
}

// Suggest analyzes root and derives the tiers.
func (a *Analyzer) Suggest(ctx context.Context, root string) (*Analysis, *Suggestion, error) {
	res, err := a.Analyze(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	s := SuggestFrom(res)
	return res, &s, nil
}

// SuggestFrom derives the tiers from an existing analysis. A pattern is
// claimed by the first tier that lists it, checked critical, then
// recommended, then optional, comparing case-insensitively.
func SuggestFrom(a *Analysis) Suggestion {
	claimed := map[string]bool{}
	take := func(dst *[]string, ps ...string) {
		for _, p := range ps {
			key := strings.ToLower(p)
			if p == "" || claimed[key] {
				continue
			}
			claimed[key] = true
			*dst = append(*dst, p)
		}
	}

	s := Suggestion{Critical: []string{}, Recommended: []string{}, Optional: []string{}}

	take(&s.Critical, criticalPatterns...)
	for _, d := range a.BigDirs {
		take(&s.Critical, d.Name)
	}

	take(&s.Recommended, recommendedPatterns[a.ProjectType]...)
	for _, m := range a.CompiledPresent {
		take(&s.Recommended, compiledPattern(m))
	}

	take(&s.Optional, optionalPatterns...)
	return s
}

// Auto returns the critical and recommended tiers concatenated, the set
// the "auto" ignore action installs.
func (s Suggestion) Auto() []string {
	out := make([]string, 0, len(s.Critical)+len(s.Recommended))
	out = append(out, s.Critical...)
	return append(out, s.Recommended...)
}
