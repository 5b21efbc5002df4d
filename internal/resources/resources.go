// Package resources implements MCP resource handlers for context
// preparation.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (llmprep://...) following MCP conventions.
package resources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HendryAvila/llm-prep/internal/config"
	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
)

// Resource URIs.
const (
	ProjectConfigURI = "llmprep://project/config"
	TemplatesURI     = "llmprep://templates"
)

// Handler manages resource endpoints.
type Handler struct {
	store config.Store
	// getwd is swapped in tests.
	getwd func() (string, error)
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store config.Store) *Handler {
	return &Handler{store: store, getwd: os.Getwd}
}

// ProjectConfigResource returns the MCP resource definition for the
// project configuration.
func (h *Handler) ProjectConfigResource() mcp.Resource {
	return mcp.NewResource(
		ProjectConfigURI,
		"Project Configuration",
		mcp.WithResourceDescription("Ignore patterns, output directory, default context dumps and recent documents"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleProjectConfig returns the project configuration as JSON. A project
// without a config file reports the defaults.
func (h *Handler) HandleProjectConfig(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	root, err := h.findRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	cfg, err := h.store.Load(root)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, cfg)
}

// TemplatesResource returns the MCP resource definition for the
// configuration templates.
func (h *Handler) TemplatesResource() mcp.Resource {
	return mcp.NewResource(
		TemplatesURI,
		"Configuration Templates",
		mcp.WithResourceDescription("Templates accepted by apply_config_template"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleTemplates lists the configuration templates as JSON.
func (h *Handler) HandleTemplates(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list := make([]config.Template, 0, len(config.Templates))
	for _, name := range config.TemplateNames() {
		list = append(list, config.Templates[name])
	}
	return jsonResource(req.Params.URI, list)
}

// findRoot walks up from cwd looking for a project config file.
func (h *Handler) findRoot() (string, error) {
	dir, err := h.getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		if _, err := os.Stat(config.ConfigPath(current)); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
