package tools

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/llm-prep/internal/prepfail"
	json "github.com/goccy/go-json"
)

// FileSelection is one file to inline, with an optional note.
type FileSelection struct {
	Path string
	Note string
}

// DumpSource is one markdown file to inline as a titled section.
type DumpSource struct {
	File  string
	Title string
}

// Accepted synonyms for selection fields. Anything else is rejected.
var (
	fileKeys  = []string{"path", "file", "filepath"}
	noteKeys  = []string{"note", "notes", "comment", "description"}
	dumpKeys  = []string{"file", "path"}
	titleKeys = []string{"title", "name"}
)

// parseFileSelections accepts an array whose items are either bare path
// strings or objects using the path and note synonyms. A JSON-encoded
// array string is accepted too.
func parseFileSelections(raw any) ([]FileSelection, error) {
	items, err := asItems(raw)
	if err != nil {
		return nil, err
	}
	out := make([]FileSelection, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return nil, prepfail.Validation("files[%d]: empty path", i)
			}
			out = append(out, FileSelection{Path: strings.TrimSpace(v)})
		case map[string]any:
			if err := onlyKeys(v, fileKeys, noteKeys); err != nil {
				return nil, prepfail.Validation("files[%d]: %v", i, err)
			}
			p := firstString(v, fileKeys)
			if p == "" {
				return nil, prepfail.Validation("files[%d]: one of %s is required", i, strings.Join(fileKeys, ", "))
			}
			out = append(out, FileSelection{Path: p, Note: firstString(v, noteKeys)})
		default:
			return nil, prepfail.Validation("files[%d]: expected a string or an object, got %T", i, item)
		}
	}
	return out, nil
}

// parseDumpSources accepts the same shapes as parseFileSelections, using
// the file and title synonyms.
func parseDumpSources(raw any) ([]DumpSource, error) {
	items, err := asItems(raw)
	if err != nil {
		return nil, err
	}
	out := make([]DumpSource, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return nil, prepfail.Validation("context_dumps[%d]: empty path", i)
			}
			out = append(out, DumpSource{File: strings.TrimSpace(v)})
		case map[string]any:
			if err := onlyKeys(v, dumpKeys, titleKeys); err != nil {
				return nil, prepfail.Validation("context_dumps[%d]: %v", i, err)
			}
			f := firstString(v, dumpKeys)
			if f == "" {
				return nil, prepfail.Validation("context_dumps[%d]: one of %s is required", i, strings.Join(dumpKeys, ", "))
			}
			out = append(out, DumpSource{File: f, Title: firstString(v, titleKeys)})
		default:
			return nil, prepfail.Validation("context_dumps[%d]: expected a string or an object, got %T", i, item)
		}
	}
	return out, nil
}

// parseStrings accepts an array of strings, a JSON array string, or a
// single plain string.
func parseStrings(raw any) ([]string, error) {
	items, err := asItems(raw)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, prepfail.Validation("item %d: expected a string, got %T", i, item)
		}
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func asItems(raw any) ([]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items, nil
	case map[string]any:
		return []any{v}, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		if strings.HasPrefix(s, "[") {
			var items []any
			if err := json.Unmarshal([]byte(s), &items); err != nil {
				return nil, prepfail.Validation("malformed JSON array: %v", err)
			}
			return items, nil
		}
		return []any{s}, nil
	}
	return nil, prepfail.Validation("expected an array, got %T", raw)
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func onlyKeys(m map[string]any, allowed ...[]string) error {
	for k := range m {
		known := false
		for _, set := range allowed {
			for _, a := range set {
				if k == a {
					known = true
				}
			}
		}
		if !known {
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}
