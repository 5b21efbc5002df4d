package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/llm-prep/internal/config"
	"github.com/HendryAvila/llm-prep/internal/ledger"
	"github.com/HendryAvila/llm-prep/internal/prepfail"
	"github.com/HendryAvila/llm-prep/internal/settings"
	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListRecentContextsTool handles the list_recent_contexts MCP tool.
type ListRecentContextsTool struct {
	settings settings.Settings
	store    config.Store
}

// NewListRecentContextsTool creates a ListRecentContextsTool.
func NewListRecentContextsTool(s settings.Settings, store config.Store) *ListRecentContextsTool {
	return &ListRecentContextsTool{settings: s, store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ListRecentContextsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_recent_contexts",
		mcp.WithDescription("List the project's most recently generated context documents, newest first."),
		mcp.WithString("project_path",
			mcp.Description("Project root (default: discovered from cwd)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum entries to show (default: 10)"),
		),
	)
}

// Handle processes the list_recent_contexts tool call.
func (t *ListRecentContextsTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := projectRoot(t.settings, req)
	if err != nil {
		return failure("list_recent_contexts", err), nil
	}
	cfg, err := t.store.Load(root)
	if err != nil {
		return failure("list_recent_contexts", err), nil
	}

	recent := cfg.Recent(intArg(req, "limit", 10))
	if len(recent) == 0 {
		return mcp.NewToolResultText("No context documents have been generated for this project yet."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## 📚 Recent Context Documents (%d)\n\n", len(recent))
	for i, rc := range recent {
		fmt.Fprintf(&sb, "%d. **%s** (%s)\n", i+1, rc.Output, rc.Timestamp)
		if rc.Description != "" {
			fmt.Fprintf(&sb, "   %s\n", rc.Description)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// SearchContextsTool handles the search_contexts MCP tool.
type SearchContextsTool struct {
	settings settings.Settings
	ledger   *ledger.Ledger
}

// NewSearchContextsTool creates a SearchContextsTool. led may be nil, in
// which case every call reports that the ledger is unavailable.
func NewSearchContextsTool(s settings.Settings, led *ledger.Ledger) *SearchContextsTool {
	return &SearchContextsTool{settings: s, ledger: led}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchContextsTool) Definition() mcp.Tool {
	return mcp.NewTool("search_contexts",
		mcp.WithDescription(
			"Full-text search over every context document generated on this machine, by "+
				"description and included file paths. An empty query lists the newest documents. "+
				"Pass an id from an earlier result to show that document in full.",
		),
		mcp.WithString("id",
			mcp.Description("Ledger id of one document to show; other arguments are ignored"),
		),
		mcp.WithString("query",
			mcp.Description("Words to search for"),
		),
		mcp.WithString("project_path",
			mcp.Description("Restrict results to one project root"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default: 10)"),
		),
	)
}

// Handle processes the search_contexts tool call.
func (t *SearchContextsTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.ledger == nil {
		return failure("search_contexts", prepfail.Validation("the document ledger is not available")), nil
	}

	if id := strings.TrimSpace(req.GetString("id", "")); id != "" {
		e, err := t.ledger.Get(id)
		if err != nil {
			return failure("search_contexts", err), nil
		}
		return mcp.NewToolResultText(FormatLedgerEntry(e)), nil
	}

	opts := ledger.SearchOptions{Limit: intArg(req, "limit", 10)}
	if p := strings.TrimSpace(req.GetString("project_path", "")); p != "" {
		root, err := t.settings.ResolveProjectPath(p)
		if err != nil {
			return failure("search_contexts", prepfail.Validation("project path: %v", err)), nil
		}
		opts.Project = root
	}

	results, err := t.ledger.Search(req.GetString("query", ""), opts)
	if err != nil {
		return failure("search_contexts", err), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No matching context documents."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## 🔎 Context Documents (%d)\n\n", len(results))
	for _, r := range results {
		fmt.Fprintf(&sb, "- **%s** (%s, %s, ~%s tokens)\n", r.Output, r.CreatedAt,
			humanize.Bytes(uint64(r.Bytes)), humanize.Comma(int64(r.Tokens)))
		fmt.Fprintf(&sb, "  project: %s | id: %s\n", r.Project, r.ID)
		if r.Description != "" {
			fmt.Fprintf(&sb, "  %s\n", r.Description)
		}
		if len(r.Files) > 0 {
			fmt.Fprintf(&sb, "  files: %s\n", strings.Join(r.Files, ", "))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// FormatLedgerEntry renders one ledger entry with every recorded file and
// dump.
func FormatLedgerEntry(e *ledger.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## 📄 %s\n\n", e.Output)
	fmt.Fprintf(&sb, "- ID: %s\n", e.ID)
	fmt.Fprintf(&sb, "- Project: %s\n", e.Project)
	fmt.Fprintf(&sb, "- Created: %s\n", e.CreatedAt)
	fmt.Fprintf(&sb, "- Size: %s (~%s tokens)\n", humanize.Bytes(uint64(e.Bytes)), humanize.Comma(int64(e.Tokens)))
	if e.Description != "" {
		fmt.Fprintf(&sb, "- Description: %s\n", e.Description)
	}
	writeList(&sb, "Files", e.Files)
	writeList(&sb, "Context dumps", e.Dumps)
	return sb.String()
}

func writeList(sb *strings.Builder, heading string, items []string) {
	fmt.Fprintf(sb, "\n### %s (%d)\n", heading, len(items))
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
}
