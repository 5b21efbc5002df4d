package tools

import (
	"context"

	"github.com/HendryAvila/llm-prep/internal/analyzer"
	"github.com/HendryAvila/llm-prep/internal/settings"
	"github.com/mark3labs/mcp-go/mcp"
)

// AnalyzeProjectTool handles the analyze_project_structure MCP tool.
// It is read-only: nothing is written to the project.
type AnalyzeProjectTool struct {
	settings settings.Settings
	analyzer *analyzer.Analyzer
}

// NewAnalyzeProjectTool creates an AnalyzeProjectTool.
func NewAnalyzeProjectTool(s settings.Settings, a *analyzer.Analyzer) *AnalyzeProjectTool {
	return &AnalyzeProjectTool{settings: s, analyzer: a}
}

// Definition returns the MCP tool definition for registration.
func (t *AnalyzeProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_project_structure",
		mcp.WithDescription(
			"Classify the project (python, javascript, rust, go, java, dotnet, ruby, php or general), "+
				"list build tools, oversized directories and compiled artifacts, and suggest "+
				"critical, recommended and optional ignore patterns.",
		),
		mcp.WithString("project_path",
			mcp.Description("Project root (default: discovered from cwd)"),
		),
	)
}

// Handle processes the analyze_project_structure tool call.
func (t *AnalyzeProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := projectRoot(t.settings, req)
	if err != nil {
		return failure("analyze_project_structure", err), nil
	}
	res, sug, err := t.analyzer.Suggest(ctx, root)
	if err != nil {
		return failure("analyze_project_structure", err), nil
	}
	return mcp.NewToolResultText(analyzer.FormatReport(res, sug) +
		"\n\nApply the critical and recommended tiers with update_tree_ignore action=auto."), nil
}
