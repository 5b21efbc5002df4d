// Package prompts implements MCP prompt handlers for context preparation.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to run a specific sequence of tools. Unlike tools, which
// the AI calls on its own, prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// argument reads a prompt argument, falling back to def when it is
// missing or blank.
func argument(req mcp.GetPromptRequest, key, def string) string {
	if args := req.Params.Arguments; args != nil {
		if v, ok := args[key]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return def
}

func userMessage(text string) []mcp.PromptMessage {
	return []mcp.PromptMessage{
		{
			Role:    mcp.RoleUser,
			Content: mcp.NewTextContent(text),
		},
	}
}

// DebugPrompt handles the debug_workflow MCP prompt.
type DebugPrompt struct{}

// NewDebugPrompt creates a DebugPrompt.
func NewDebugPrompt() *DebugPrompt {
	return &DebugPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *DebugPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("debug_workflow",
		mcp.WithPromptDescription(
			"Collect the files, logs and notes needed to debug an issue into a single "+
				"context document.",
		),
		mcp.WithArgument("issue_description",
			mcp.ArgumentDescription("What is going wrong"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the debug_workflow prompt request.
func (p *DebugPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	issue := argument(req, "issue_description", "an unspecified issue")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Debug context for: %s", issue),
		Messages: userMessage(fmt.Sprintf(
			"I need to debug this issue: %s\n\n"+
				"Please:\n"+
				"1. Run `apply_config_template` with template='debug' if the project has no debug setup yet\n"+
				"2. Run `analyze_project_structure` and identify the files most likely involved\n"+
				"3. Write what you know so far (stack traces, reproduction steps, hypotheses) with "+
				"`create_debug_notes` (filename='debug_notes') and any raw logs with filename='error_logs'\n"+
				"4. Run `prepare_context` with the suspect files, a short note on why each matters, "+
				"and description set to the issue\n"+
				"5. Tell me the path of the generated document and summarize what it contains",
			issue,
		)),
	}, nil
}

// FeaturePrompt handles the feature_implementation MCP prompt.
type FeaturePrompt struct{}

// NewFeaturePrompt creates a FeaturePrompt.
func NewFeaturePrompt() *FeaturePrompt {
	return &FeaturePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *FeaturePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("feature_implementation",
		mcp.WithPromptDescription(
			"Gather requirements, architecture docs and the code a new feature touches "+
				"into a context document.",
		),
		mcp.WithArgument("feature_description",
			mcp.ArgumentDescription("The feature to implement"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the feature_implementation prompt request.
func (p *FeaturePrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	feature := argument(req, "feature_description", "a new feature")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Feature context for: %s", feature),
		Messages: userMessage(fmt.Sprintf(
			"I want to implement this feature: %s\n\n"+
				"Please:\n"+
				"1. Run `apply_config_template` with template='feature' so docs/requirements.md and "+
				"docs/architecture.md are included by default\n"+
				"2. Run `analyze_project_structure` to understand the layout\n"+
				"3. Pick the modules the feature will touch and the interfaces it must respect\n"+
				"4. Run `prepare_context` with those files, a note per file, and description set to the feature\n"+
				"5. Summarize the document and propose an implementation plan based on it",
			feature,
		)),
	}, nil
}

// ReviewPrompt handles the review_workflow MCP prompt.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("review_workflow",
		mcp.WithPromptDescription("Prepare a context document for reviewing recent changes."),
		mcp.WithArgument("scope",
			mcp.ArgumentDescription("What to review, e.g. a directory, a feature or 'recent changes'"),
		),
	)
}

// Handle processes the review_workflow prompt request.
func (p *ReviewPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	scope := argument(req, "scope", "recent changes")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Review context for: %s", scope),
		Messages: userMessage(fmt.Sprintf(
			"I want a code review of: %s\n\n"+
				"Please:\n"+
				"1. Run `apply_config_template` with template='review' so CHANGELOG.md and review notes are included\n"+
				"2. Run `list_recent_contexts` to see what was already prepared for this project\n"+
				"3. Select the files in scope and note what changed in each\n"+
				"4. Run `prepare_context` with them and description set to the review scope\n"+
				"5. Review the document: correctness, error handling, tests and naming",
			scope,
		)),
	}, nil
}
