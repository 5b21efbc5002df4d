package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/HendryAvila/llm-prep/internal/config"
	"github.com/HendryAvila/llm-prep/internal/notes"
	"github.com/HendryAvila/llm-prep/internal/prepfail"
	"github.com/HendryAvila/llm-prep/internal/settings"
	"github.com/mark3labs/mcp-go/mcp"
)

// CreateDebugNotesTool handles the create_debug_notes MCP tool.
type CreateDebugNotesTool struct {
	settings settings.Settings
}

// NewCreateDebugNotesTool creates a CreateDebugNotesTool.
func NewCreateDebugNotesTool(s settings.Settings) *CreateDebugNotesTool {
	return &CreateDebugNotesTool{settings: s}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateDebugNotesTool) Definition() mcp.Tool {
	return mcp.NewTool("create_debug_notes",
		mcp.WithDescription(
			"Create a markdown note under the project's .llm_prep_notes directory, "+
				"prefixed with created/type front matter. Notes can later be inlined "+
				"with prepare_context as context dumps or note files.",
		),
		mcp.WithString("project_path",
			mcp.Description("Project root (default: discovered from cwd)"),
		),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Note file name; .md is appended when missing"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Markdown content of the note"),
		),
		mcp.WithString("subfolder",
			mcp.Description("Optional subfolder inside .llm_prep_notes"),
		),
		mcp.WithString("note_type",
			mcp.Description("Front-matter type (default: debug_notes)"),
		),
	)
}

// Handle processes the create_debug_notes tool call.
func (t *CreateDebugNotesTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := projectRoot(t.settings, req)
	if err != nil {
		return failure("create_debug_notes", err), nil
	}
	content := req.GetString("content", "")
	if content == "" {
		return failure("create_debug_notes", prepfail.Validation("'content' is required")), nil
	}

	path, err := notes.Create(root, notes.Note{
		Filename:  req.GetString("filename", ""),
		Content:   content,
		Subfolder: req.GetString("subfolder", ""),
		Type:      req.GetString("note_type", ""),
	})
	if err != nil {
		return failure("create_debug_notes", err), nil
	}

	created, typ, err := notes.ReadHeader(path)
	if err != nil {
		return failure("create_debug_notes", err), nil
	}

	rel := displayPath(root, path)
	return mcp.NewToolResultText(fmt.Sprintf(
		"📝 Note created: %s\n- Type: %s\n- Created: %s\n\nInclude it in a document with prepare_context, e.g. context_dumps: [{\"file\": %q}]",
		path, typ, created.Format(time.RFC3339), rel,
	)), nil
}

// CleanTempNotesTool handles the clean_temp_notes MCP tool.
type CleanTempNotesTool struct {
	settings settings.Settings
}

// NewCleanTempNotesTool creates a CleanTempNotesTool.
func NewCleanTempNotesTool(s settings.Settings) *CleanTempNotesTool {
	return &CleanTempNotesTool{settings: s}
}

// Definition returns the MCP tool definition for registration.
func (t *CleanTempNotesTool) Definition() mcp.Tool {
	return mcp.NewTool("clean_temp_notes",
		mcp.WithDescription("Delete markdown notes in .llm_prep_notes older than the given number of days."),
		mcp.WithString("project_path",
			mcp.Description("Project root (default: discovered from cwd)"),
		),
		mcp.WithNumber("older_than_days",
			mcp.Description("Age threshold in days (default: 7)"),
		),
	)
}

// Handle processes the clean_temp_notes tool call.
func (t *CleanTempNotesTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := projectRoot(t.settings, req)
	if err != nil {
		return failure("clean_temp_notes", err), nil
	}
	days := intArg(req, "older_than_days", 7)

	n, err := notes.Clean(config.NotesPath(root), days)
	if err != nil {
		return failure("clean_temp_notes", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("🧹 Deleted %d note(s) older than %d day(s) from %s", n, days, config.NotesDir)), nil
}
