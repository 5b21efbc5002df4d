// Package config owns the per-project configuration record stored at
// <root>/.llm_prep_config.json and the bounded history operations on it.
package config

import (
	"github.com/HendryAvila/llm-prep/internal/patterns"
)

const (
	// FileName is the config file at the project root.
	FileName = ".llm_prep_config.json"
	// NotesDir is the project-local directory for caller-created notes.
	NotesDir = ".llm_prep_notes"
	// DefaultOutputDir is where generated documents go unless configured.
	DefaultOutputDir = "context_reports"

	// MaxRecentContexts caps RecentContexts.
	MaxRecentContexts = 20
	// MaxIgnoreHistory caps TreeIgnoreHistory.
	MaxIgnoreHistory = 50
)

// ContextDump is a default note source inlined into every document.
type ContextDump struct {
	File  string `json:"file"`
	Title string `json:"title"`
}

// RecentContext records one generated document.
type RecentContext struct {
	Timestamp   string `json:"timestamp"`
	Output      string `json:"output"`
	Description string `json:"description"`
}

// IgnoreChange is one audit entry for a tree_ignore update.
type IgnoreChange struct {
	Timestamp string `json:"timestamp"`
	Patterns  string `json:"patterns"`
	Action    Action `json:"action"`
	Reason    string `json:"reason,omitempty"`
}

// ProjectConfig is the persisted per-project record. History slices are
// most recent first.
type ProjectConfig struct {
	TreeIgnore          string          `json:"tree_ignore"`
	OutputDir           string          `json:"output_dir"`
	DefaultContextDumps []ContextDump   `json:"default_context_dumps"`
	RecentContexts      []RecentContext `json:"recent_contexts"`
	TreeIgnoreHistory   []IgnoreChange  `json:"tree_ignore_history"`
}

// NewProjectConfig returns the configuration a project starts with.
func NewProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		TreeIgnore:          patterns.Default,
		OutputDir:           DefaultOutputDir,
		DefaultContextDumps: []ContextDump{},
		RecentContexts:      []RecentContext{},
		TreeIgnoreHistory:   []IgnoreChange{},
	}
}

// Patterns returns TreeIgnore in its sequence form.
func (c *ProjectConfig) Patterns() []string {
	return patterns.Split(c.TreeIgnore)
}

// fillDefaults repairs records written by older versions or by hand.
func (c *ProjectConfig) fillDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.DefaultContextDumps == nil {
		c.DefaultContextDumps = []ContextDump{}
	}
	if c.RecentContexts == nil {
		c.RecentContexts = []RecentContext{}
	}
	if c.TreeIgnoreHistory == nil {
		c.TreeIgnoreHistory = []IgnoreChange{}
	}
}
