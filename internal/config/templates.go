package config

import (
	"sort"
	"strings"

	"github.com/HendryAvila/llm-prep/internal/prepfail"
)

// Template is a named starting configuration for a kind of session.
type Template struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	OutputDir   string        `json:"output_dir"`
	Dumps       []ContextDump `json:"default_context_dumps"`
}

// Templates are the built-in configuration templates.
var Templates = map[string]Template{
	"debug": {
		Name:        "debug",
		Description: "Bug hunting: error logs and debug analysis notes",
		OutputDir:   "context_reports/debug",
		Dumps: []ContextDump{
			{File: NotesDir + "/error_logs.md", Title: "Error Logs"},
			{File: NotesDir + "/debug_notes.md", Title: "Debug Analysis"},
		},
	},
	"feature": {
		Name:        "feature",
		Description: "Feature work: requirements and architecture docs",
		OutputDir:   "context_reports/features",
		Dumps: []ContextDump{
			{File: "docs/requirements.md", Title: "Requirements"},
			{File: "docs/architecture.md", Title: "Architecture"},
		},
	},
	"review": {
		Name:        "review",
		Description: "Code review: changelog and review notes",
		OutputDir:   "context_reports/reviews",
		Dumps: []ContextDump{
			{File: "CHANGELOG.md", Title: "Recent Changes"},
			{File: NotesDir + "/review_notes.md", Title: "Review Notes"},
		},
	},
}

// TemplateNames returns the template names, sorted.
func TemplateNames() []string {
	names := make([]string, 0, len(Templates))
	for n := range Templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ApplyTemplate replaces the output directory and default dumps of cfg
// with the named template's, and installs suggested as the ignore set.
// History is kept; the ignore change is recorded as an auto update.
func ApplyTemplate(cfg *ProjectConfig, name string, suggested []string, maxLen int) (Template, error) {
	tpl, ok := Templates[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Template{}, prepfail.Validation("unknown template %q (available: %s)", name, strings.Join(TemplateNames(), ", "))
	}

	if _, err := UpdateIgnore(cfg, IgnoreUpdate{
		Action:   ActionAuto,
		Patterns: suggested,
		Reason:   "template: " + tpl.Name,
	}, maxLen); err != nil {
		return Template{}, err
	}
	cfg.OutputDir = tpl.OutputDir
	cfg.DefaultContextDumps = append([]ContextDump(nil), tpl.Dumps...)
	return tpl, nil
}
