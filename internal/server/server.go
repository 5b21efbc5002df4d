// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources that depend on them.
// No business logic lives here, only wiring.
package server

import (
	"context"
	"io"

	"github.com/HendryAvila/llm-prep/internal/analyzer"
	"github.com/HendryAvila/llm-prep/internal/config"
	"github.com/HendryAvila/llm-prep/internal/ledger"
	"github.com/HendryAvila/llm-prep/internal/prompts"
	"github.com/HendryAvila/llm-prep/internal/resources"
	"github.com/HendryAvila/llm-prep/internal/settings"
	"github.com/HendryAvila/llm-prep/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version is set at build time via ldflags.
var Version = "dev"

// SetupLogging configures the global zerolog logger. Output goes to w,
// which must not be stdout while serving over stdio.
func SetupLogging(w io.Writer, debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: true})
}

// OpenLedger opens the document ledger under s.LedgerDir. A ledger that
// cannot be opened is not fatal: it is logged and nil is returned, and
// the caller runs without search_contexts results. The returned cleanup
// is always non-nil.
func OpenLedger(s settings.Settings) (*ledger.Ledger, func()) {
	led, err := ledger.New(ledger.DefaultConfig(s.LedgerDir))
	if err != nil {
		log.Warn().Err(err).Str("dir", s.LedgerDir).Msg("document ledger disabled")
		return nil, noop
	}
	return led, func() {
		if err := led.Close(); err != nil {
			log.Warn().Err(err).Msg("closing document ledger")
		}
	}
}

// New creates and configures the MCP server with all tools, prompts and
// resources registered.
//
// The returned cleanup function closes the ledger and must be called on
// shutdown. It is always non-nil.
func New(s settings.Settings) (*server.MCPServer, func(), error) {
	store := config.NewFileStore()
	an := analyzer.New(s)
	led, cleanup := OpenLedger(s)
	preparer := tools.NewPreparer(s, store, led)

	srv := server.NewMCPServer(
		"llm-prep",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Tools ---

	register := func(t tool) { srv.AddTool(t.Definition(), t.Handle) }
	register(tools.NewPrepareContextTool(s, preparer))
	register(tools.NewAnalyzeProjectTool(s, an))
	register(tools.NewCreateDebugNotesTool(s))
	register(tools.NewCleanTempNotesTool(s))
	register(tools.NewSetProjectConfigTool(s, store))
	register(tools.NewGetTreeIgnoreTool(s, store, an))
	register(tools.NewUpdateTreeIgnoreTool(s, store, an))
	register(tools.NewApplyConfigTemplateTool(s, store, an))
	register(tools.NewListRecentContextsTool(s, store))
	register(tools.NewSearchContextsTool(s, led))

	// --- Prompts ---

	debugPrompt := prompts.NewDebugPrompt()
	srv.AddPrompt(debugPrompt.Definition(), debugPrompt.Handle)

	featurePrompt := prompts.NewFeaturePrompt()
	srv.AddPrompt(featurePrompt.Definition(), featurePrompt.Handle)

	reviewPrompt := prompts.NewReviewPrompt()
	srv.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	// --- Resources ---

	rh := resources.NewHandler(store)
	srv.AddResource(rh.ProjectConfigResource(), rh.HandleProjectConfig)
	srv.AddResource(rh.TemplatesResource(), rh.HandleTemplates)

	log.Debug().
		Str("version", Version).
		Bool("ledger", led != nil).
		Msg("mcp server configured")

	return srv, cleanup, nil
}

// tool is the shape shared by every handler in the tools package.
type tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

func noop() {}

func serverInstructions() string {
	return `You have access to llm-prep, a server that assembles project files, notes and
analysis documents into a single markdown context document.

## Typical flow
1. analyze_project_structure: detect the project type and suggested ignore patterns.
2. update_tree_ignore action=auto (or apply_config_template) to set sensible ignores.
3. create_debug_notes: write findings, logs or hypotheses to .llm_prep_notes.
4. prepare_context: list files with a note explaining why each matters, add
   context_dumps (whole markdown files) and general_notes, then read the
   generated document path from the result.

## Rules
- Paths are relative to the project root. Files outside the root are rejected.
- Use dry_run=true on prepare_context to preview what would be included.
- Default context dumps from the project config are added automatically; a
  dump listed explicitly wins over the same default.
- list_recent_contexts shows this project's history; search_contexts searches
  every document generated on this machine, and with an id shows one in full.
- Binary files are replaced by a placeholder. Files above the size limit fail
  the request instead of being truncated.`
}
