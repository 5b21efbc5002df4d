// Package tools implements the MCP tool handlers for context preparation.
//
// Each tool is a struct holding its dependencies, with a Definition for
// registration and a Handle compatible with mcp-go's CallToolRequest
// signature. Operation failures are returned as tool error results, never
// as Go errors, so one bad request cannot take the session down.
package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HendryAvila/llm-prep/internal/config"
	"github.com/HendryAvila/llm-prep/internal/prepfail"
	"github.com/HendryAvila/llm-prep/internal/settings"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// findProjectRoot walks up from the current working directory looking
// for an existing .llm_prep_config.json. If none is found, returns cwd.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
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

// projectRoot resolves the project_path argument, falling back to the
// discovered project root, and checks that it is a directory.
func projectRoot(s settings.Settings, req mcp.CallToolRequest) (string, error) {
	p := strings.TrimSpace(req.GetString("project_path", ""))
	var (
		root string
		err  error
	)
	if p == "" {
		root, err = findProjectRoot()
	} else {
		root, err = s.ResolveProjectPath(p)
	}
	if err != nil {
		return "", prepfail.Validation("project path: %v", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", prepfail.NotFound(root)
	}
	return root, nil
}

// failure logs err and converts it into a caller-visible tool error.
func failure(tool string, err error) *mcp.CallToolResult {
	log.Error().Err(err).Str("tool", tool).Msg("tool failed")

	prefix := "Error"
	switch prepfail.KindOf(err) {
	case prepfail.KindNotFound:
		prefix = "Not found"
	case prepfail.KindValidation:
		prefix = "Invalid request"
	case prepfail.KindSizeLimit:
		prefix = "Size limit exceeded"
	case prepfail.KindIO:
		prefix = "I/O error"
	}
	return mcp.NewToolResultError(fmt.Sprintf("❌ %s: %v", prefix, err))
}

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	switch v := req.GetArguments()[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return defaultVal
}

// boolArg reads a boolean argument.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// hasArg reports whether the caller supplied key at all.
func hasArg(req mcp.CallToolRequest, key string) bool {
	_, ok := req.GetArguments()[key]
	return ok
}

// displayPath shows p relative to root when it is inside it.
func displayPath(root, p string) string {
	if r, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(r, "..") {
		return filepath.ToSlash(r)
	}
	return p
}

// isNotFound reports whether err is a prepfail NotFound.
func isNotFound(err error) bool {
	return errors.Is(err, prepfail.ErrNotFound)
}
