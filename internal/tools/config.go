package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/llm-prep/internal/analyzer"
	"github.com/HendryAvila/llm-prep/internal/config"
	"github.com/HendryAvila/llm-prep/internal/patterns"
	"github.com/HendryAvila/llm-prep/internal/prepfail"
	"github.com/HendryAvila/llm-prep/internal/settings"
	"github.com/mark3labs/mcp-go/mcp"
)

// SetProjectConfigTool handles the set_project_config MCP tool.
type SetProjectConfigTool struct {
	settings settings.Settings
	store    config.Store
}

// NewSetProjectConfigTool creates a SetProjectConfigTool.
func NewSetProjectConfigTool(s settings.Settings, store config.Store) *SetProjectConfigTool {
	return &SetProjectConfigTool{settings: s, store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *SetProjectConfigTool) Definition() mcp.Tool {
	return mcp.NewTool("set_project_config",
		mcp.WithDescription(
			"Update the project's stored settings: ignore patterns, output directory and "+
				"default context dumps. Omitted fields are left unchanged. Invalid ignore "+
				"patterns reject the whole update.",
		),
		mcp.WithString("project_path",
			mcp.Description("Project root (default: discovered from cwd)"),
		),
		mcp.WithString("tree_ignore",
			mcp.Description("Pipe-separated ignore patterns replacing the current set"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Directory for generated documents, relative to the project root"),
		),
		mcp.WithArray("default_context_dumps",
			mcp.Description("Context dumps included in every document: paths or objects {file, title}"),
			mcp.Items(map[string]any{}),
		),
	)
}

// Handle processes the set_project_config tool call.
func (t *SetProjectConfigTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := projectRoot(t.settings, req)
	if err != nil {
		return failure("set_project_config", err), nil
	}
	cfg, err := t.store.Load(root)
	if err != nil {
		return failure("set_project_config", err), nil
	}

	var changed []string
	var warnings []string

	if hasArg(req, "tree_ignore") {
		res, err := config.UpdateIgnore(cfg, config.IgnoreUpdate{
			Action:   config.ActionSet,
			Patterns: []string{req.GetString("tree_ignore", "")},
			Reason:   "set_project_config",
		}, t.settings.MaxPatternLength)
		if err != nil {
			return failure("set_project_config", err), nil
		}
		warnings = res.Warnings
		changed = append(changed, "tree_ignore")
	}
	if hasArg(req, "output_dir") {
		dir := strings.TrimSpace(req.GetString("output_dir", ""))
		if dir == "" {
			return failure("set_project_config", prepfail.Validation("output_dir must not be empty")), nil
		}
		cfg.OutputDir = dir
		changed = append(changed, "output_dir")
	}
	if hasArg(req, "default_context_dumps") {
		dumps, err := parseDumpSources(req.GetArguments()["default_context_dumps"])
		if err != nil {
			return failure("set_project_config", err), nil
		}
		cfg.DefaultContextDumps = make([]config.ContextDump, 0, len(dumps))
		for _, d := range dumps {
			cfg.DefaultContextDumps = append(cfg.DefaultContextDumps, config.ContextDump{File: d.File, Title: d.Title})
		}
		changed = append(changed, "default_context_dumps")
	}

	if len(changed) == 0 {
		return failure("set_project_config", prepfail.Validation(
			"nothing to update: pass tree_ignore, output_dir or default_context_dumps")), nil
	}
	if err := t.store.Save(root, cfg); err != nil {
		return failure("set_project_config", err), nil
	}

	var sb strings.Builder
	sb.WriteString("## ✅ Project Configuration Updated\n\n")
	fmt.Fprintf(&sb, "**Updated:** %s\n\n", strings.Join(changed, ", "))
	writeConfigSummary(&sb, cfg)
	writeWarnings(&sb, warnings)
	return mcp.NewToolResultText(sb.String()), nil
}

// GetTreeIgnoreTool handles the get_tree_ignore MCP tool.
type GetTreeIgnoreTool struct {
	settings settings.Settings
	store    config.Store
	analyzer *analyzer.Analyzer
}

// NewGetTreeIgnoreTool creates a GetTreeIgnoreTool.
func NewGetTreeIgnoreTool(s settings.Settings, store config.Store, a *analyzer.Analyzer) *GetTreeIgnoreTool {
	return &GetTreeIgnoreTool{settings: s, store: store, analyzer: a}
}

// Definition returns the MCP tool definition for registration.
func (t *GetTreeIgnoreTool) Definition() mcp.Tool {
	return mcp.NewTool("get_tree_ignore",
		mcp.WithDescription(
			"Show the project's current ignore patterns, the detected project type, and "+
				"suggested critical and recommended patterns that are not yet present.",
		),
		mcp.WithString("project_path",
			mcp.Description("Project root (default: discovered from cwd)"),
		),
	)
}

// Handle processes the get_tree_ignore tool call.
func (t *GetTreeIgnoreTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := projectRoot(t.settings, req)
	if err != nil {
		return failure("get_tree_ignore", err), nil
	}
	cfg, err := t.store.Load(root)
	if err != nil {
		return failure("get_tree_ignore", err), nil
	}
	res, sug, err := t.analyzer.Suggest(ctx, root)
	if err != nil {
		return failure("get_tree_ignore", err), nil
	}

	current := cfg.Patterns()
	missing := func(list []string) []string {
		var out []string
		for _, p := range list {
			if !patterns.ContainsFold(current, p) {
				out = append(out, p)
			}
		}
		return out
	}

	var sb strings.Builder
	sb.WriteString("## 🌳 Tree Ignore Patterns\n\n")
	fmt.Fprintf(&sb, "**Project type:** %s\n", res.ProjectType)
	fmt.Fprintf(&sb, "**Current (%d):** `%s`\n\n", len(current), cfg.TreeIgnore)
	fmt.Fprintf(&sb, "**Missing critical:** %s\n", listOrNone(missing(sug.Critical)))
	fmt.Fprintf(&sb, "**Missing recommended:** %s\n", listOrNone(missing(sug.Recommended)))
	if len(cfg.TreeIgnoreHistory) > 0 {
		last := cfg.TreeIgnoreHistory[0]
		fmt.Fprintf(&sb, "\n**Last change:** %s (%s)", last.Action, last.Timestamp)
		if last.Reason != "" {
			fmt.Fprintf(&sb, ": %s", last.Reason)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nUse update_tree_ignore with action add, remove, set or auto to change them.")
	return mcp.NewToolResultText(sb.String()), nil
}

// UpdateTreeIgnoreTool handles the update_tree_ignore MCP tool.
type UpdateTreeIgnoreTool struct {
	settings settings.Settings
	store    config.Store
	analyzer *analyzer.Analyzer
}

// NewUpdateTreeIgnoreTool creates an UpdateTreeIgnoreTool.
func NewUpdateTreeIgnoreTool(s settings.Settings, store config.Store, a *analyzer.Analyzer) *UpdateTreeIgnoreTool {
	return &UpdateTreeIgnoreTool{settings: s, store: store, analyzer: a}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateTreeIgnoreTool) Definition() mcp.Tool {
	return mcp.NewTool("update_tree_ignore",
		mcp.WithDescription(
			"Change the project's ignore patterns. set replaces them, add appends new ones, "+
				"remove drops matching ones (case-insensitive), auto replaces them with the "+
				"analyzer's critical and recommended suggestions. Every change is recorded in "+
				"the ignore history.",
		),
		mcp.WithString("project_path",
			mcp.Description("Project root (default: discovered from cwd)"),
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("How to apply the patterns"),
			mcp.Enum(config.Actions...),
		),
		mcp.WithString("patterns",
			mcp.Description("Pipe-separated patterns (required for set, add and remove)"),
		),
		mcp.WithString("reason",
			mcp.Description("Why the change is made; stored in the history"),
		),
	)
}

// Handle processes the update_tree_ignore tool call.
func (t *UpdateTreeIgnoreTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := projectRoot(t.settings, req)
	if err != nil {
		return failure("update_tree_ignore", err), nil
	}
	action, err := config.ParseAction(req.GetString("action", ""))
	if err != nil {
		return failure("update_tree_ignore", err), nil
	}
	cfg, err := t.store.Load(root)
	if err != nil {
		return failure("update_tree_ignore", err), nil
	}

	u := config.IgnoreUpdate{
		Action:   action,
		Patterns: patterns.Split(req.GetString("patterns", "")),
		Reason:   req.GetString("reason", ""),
	}
	if action == config.ActionAuto {
		_, sug, err := t.analyzer.Suggest(ctx, root)
		if err != nil {
			return failure("update_tree_ignore", err), nil
		}
		u.Patterns = sug.Auto()
	}

	before := cfg.TreeIgnore
	res, err := config.UpdateIgnore(cfg, u, t.settings.MaxPatternLength)
	if err != nil {
		return failure("update_tree_ignore", err), nil
	}
	if err := t.store.Save(root, cfg); err != nil {
		return failure("update_tree_ignore", err), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## ✅ Tree Ignore Updated (%s)\n\n", action)
	fmt.Fprintf(&sb, "**Before:** `%s`\n", before)
	fmt.Fprintf(&sb, "**After:** `%s`\n", cfg.TreeIgnore)
	writeWarnings(&sb, res.Warnings)
	return mcp.NewToolResultText(sb.String()), nil
}

// ApplyConfigTemplateTool handles the apply_config_template MCP tool.
type ApplyConfigTemplateTool struct {
	settings settings.Settings
	store    config.Store
	analyzer *analyzer.Analyzer
}

// NewApplyConfigTemplateTool creates an ApplyConfigTemplateTool.
func NewApplyConfigTemplateTool(s settings.Settings, store config.Store, a *analyzer.Analyzer) *ApplyConfigTemplateTool {
	return &ApplyConfigTemplateTool{settings: s, store: store, analyzer: a}
}

// Definition returns the MCP tool definition for registration.
func (t *ApplyConfigTemplateTool) Definition() mcp.Tool {
	return mcp.NewTool("apply_config_template",
		mcp.WithDescription(
			"Apply a configuration template (debug, feature or review): sets the output "+
				"directory, the default context dumps, and analyzer-suggested ignore patterns.",
		),
		mcp.WithString("project_path",
			mcp.Description("Project root (default: discovered from cwd)"),
		),
		mcp.WithString("template",
			mcp.Required(),
			mcp.Description("Template name"),
			mcp.Enum(config.TemplateNames()...),
		),
	)
}

// Handle processes the apply_config_template tool call.
func (t *ApplyConfigTemplateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := projectRoot(t.settings, req)
	if err != nil {
		return failure("apply_config_template", err), nil
	}
	cfg, err := t.store.Load(root)
	if err != nil {
		return failure("apply_config_template", err), nil
	}
	_, sug, err := t.analyzer.Suggest(ctx, root)
	if err != nil {
		return failure("apply_config_template", err), nil
	}

	tpl, err := config.ApplyTemplate(cfg, req.GetString("template", ""), sug.Auto(), t.settings.MaxPatternLength)
	if err != nil {
		return failure("apply_config_template", err), nil
	}
	if err := t.store.Save(root, cfg); err != nil {
		return failure("apply_config_template", err), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## ✅ Template Applied: %s\n\n%s\n\n", tpl.Name, tpl.Description)
	writeConfigSummary(&sb, cfg)
	return mcp.NewToolResultText(sb.String()), nil
}

func writeConfigSummary(sb *strings.Builder, cfg *config.ProjectConfig) {
	fmt.Fprintf(sb, "- **Output dir:** %s\n", cfg.OutputDir)
	fmt.Fprintf(sb, "- **Tree ignore:** `%s`\n", cfg.TreeIgnore)
	if len(cfg.DefaultContextDumps) == 0 {
		sb.WriteString("- **Default context dumps:** (none)\n")
		return
	}
	sb.WriteString("- **Default context dumps:**\n")
	for _, d := range cfg.DefaultContextDumps {
		title := d.Title
		if title == "" {
			title = "(default title)"
		}
		fmt.Fprintf(sb, "  - %s: %s\n", d.File, title)
	}
}

func writeWarnings(sb *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	sb.WriteString("\n⚠️  Warnings:\n")
	for _, w := range warnings {
		fmt.Fprintf(sb, "- %s\n", w)
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
