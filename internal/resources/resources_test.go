package resources

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/HendryAvila/llm-prep/internal/config"
	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readText(t *testing.T, contents []mcp.ResourceContents) mcp.TextResourceContents {
	t.Helper()
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok, "content is %T", contents[0])
	return tc
}

func TestHandleProjectConfig_FindsConfigAbove(t *testing.T) {
	root := t.TempDir()
	store := config.NewFileStore()
	cfg := config.NewProjectConfig()
	cfg.OutputDir = "ctx"
	require.NoError(t, store.Save(root, cfg))

	h := NewHandler(store)
	h.getwd = func() (string, error) { return filepath.Join(root, "deep", "dir"), nil }

	req := mcp.ReadResourceRequest{}
	req.Params.URI = ProjectConfigURI
	contents, err := h.HandleProjectConfig(context.Background(), req)
	require.NoError(t, err)
	tc := readText(t, contents)
	assert.Equal(t, "application/json", tc.MIMEType)

	var got config.ProjectConfig
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &got))
	assert.Equal(t, "ctx", got.OutputDir)
}

func TestHandleProjectConfig_DefaultsWithoutFile(t *testing.T) {
	h := NewHandler(config.NewFileStore())
	root := t.TempDir()
	h.getwd = func() (string, error) { return root, nil }

	req := mcp.ReadResourceRequest{}
	req.Params.URI = ProjectConfigURI
	contents, err := h.HandleProjectConfig(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, readText(t, contents).Text, `"output_dir": "context_reports"`)
}

func TestHandleTemplates(t *testing.T) {
	h := NewHandler(config.NewFileStore())
	req := mcp.ReadResourceRequest{}
	req.Params.URI = TemplatesURI
	contents, err := h.HandleTemplates(context.Background(), req)
	require.NoError(t, err)

	var list []config.Template
	require.NoError(t, json.Unmarshal([]byte(readText(t, contents).Text), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "debug", list[0].Name)
	assert.Equal(t, "review", list[2].Name)
}
