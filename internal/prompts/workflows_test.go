package prompts

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prompt interface {
	Definition() mcp.Prompt
	Handle(context.Context, mcp.GetPromptRequest) (*mcp.GetPromptResult, error)
}

func promptText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, res.Messages, 1)
	tc, ok := res.Messages[0].Content.(mcp.TextContent)
	require.True(t, ok, "content is %T, want TextContent", res.Messages[0].Content)
	return tc.Text
}

func TestPrompts(t *testing.T) {
	tests := []struct {
		name     string
		p        prompt
		arg      string
		value    string
		fallback string
		tool     string
	}{
		{"debug_workflow", NewDebugPrompt(), "issue_description", "login times out", "an unspecified issue", "create_debug_notes"},
		{"feature_implementation", NewFeaturePrompt(), "feature_description", "CSV export", "a new feature", "template='feature'"},
		{"review_workflow", NewReviewPrompt(), "scope", "internal/auth", "recent changes", "list_recent_contexts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.p.Definition().Name)

			req := mcp.GetPromptRequest{}
			req.Params.Arguments = map[string]string{tt.arg: tt.value}
			res, err := tt.p.Handle(context.Background(), req)
			require.NoError(t, err)
			text := promptText(t, res)
			assert.Contains(t, text, tt.value)
			assert.Contains(t, text, tt.tool)
			assert.Contains(t, text, "prepare_context", "every workflow should end in prepare_context")

			res, err = tt.p.Handle(context.Background(), mcp.GetPromptRequest{})
			require.NoError(t, err)
			assert.Contains(t, promptText(t, res), tt.fallback)
		})
	}
}
