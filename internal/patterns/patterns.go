// Package patterns implements the ignore-pattern utilities: normalization,
// validation, the pipe-delimited storage form, and the case-insensitive glob
// matcher used by the tree renderer.
//
// All functions are pure. Patterns are compared case-insensitively and kept
// in first-seen order.
package patterns

import (
	"fmt"
	"path"
	"strings"
)

// Separator joins patterns in their stored string form.
const Separator = "|"

// Default is the ignore string a fresh project starts with.
const Default = "bin|lib|*.log|logs|__pycache__|*.csv|*.pyc|.git|.env|*.db|node_modules|.venv|venv"

// Builtin are always excluded by the tree renderer. Listing them in a
// pattern set is harmless but has no effect.
var Builtin = []string{".git", ".hg", ".svn"}

// broad patterns hide nearly everything.
var broad = map[string]bool{"*": true, "**": true, "*.*": true, ".*": true, "*/*": true}

// Normalize trims whitespace, expands embedded separators, drops empty
// entries and removes case-insensitive duplicates, keeping the first
// occurrence.
func Normalize(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	seen := make(map[string]bool, len(patterns))
	for _, raw := range patterns {
		for _, p := range strings.Split(raw, Separator) {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			key := strings.ToLower(p)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, p)
		}
	}
	return out
}

// Split parses the stored form. Split("") returns an empty slice.
func Split(s string) []string {
	return Normalize([]string{s})
}

// Join renders the canonical stored form. Join(nil) returns "".
func Join(patterns []string) string {
	return strings.Join(Normalize(patterns), Separator)
}

// Result is the outcome of Validate. Joined is always populated so the
// caller can decide whether to persist despite errors.
type Result struct {
	Errors   []string
	Warnings []string
	Joined   string
}

// OK reports whether validation produced no errors.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Validate checks a pattern set against maxLen (the ceiling on the joined
// form; <= 0 disables the check) and the matcher's syntax.
func Validate(patterns []string, maxLen int) Result {
	norm := Normalize(patterns)
	res := Result{Joined: strings.Join(norm, Separator)}

	if maxLen > 0 && len(res.Joined) > maxLen {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"pattern string is %d characters, maximum is %d", len(res.Joined), maxLen))
	}

	for _, p := range norm {
		switch {
		case strings.HasPrefix(p, "/"):
			res.Errors = append(res.Errors, fmt.Sprintf(
				"%q is anchored with a leading '/'; patterns match relative paths", p))
			continue
		case strings.Contains(p, `\`):
			res.Errors = append(res.Errors, fmt.Sprintf(
				"%q contains '\\'; use '/' to separate path segments", p))
			continue
		case strings.ContainsAny(p, "\x00\n\r\t"):
			res.Errors = append(res.Errors, fmt.Sprintf("%q contains control characters", p))
			continue
		}
		if _, err := path.Match(strings.ToLower(trimDirSuffix(p)), ""); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%q is not a valid glob: %v", p, err))
			continue
		}

		switch {
		case broad[p]:
			res.Warnings = append(res.Warnings, fmt.Sprintf("%q is overly broad and hides almost every entry", p))
		case strings.Contains(p, "**"):
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"%q uses '**', which matches a single path segment like '*'", p))
		case isBuiltin(p):
			res.Warnings = append(res.Warnings, fmt.Sprintf("%q is always ignored; the pattern has no effect", p))
		}
	}
	return res
}

func isBuiltin(p string) bool {
	for _, b := range Builtin {
		if strings.EqualFold(trimDirSuffix(p), b) {
			return true
		}
	}
	return false
}

func trimDirSuffix(p string) string {
	if len(p) > 1 {
		return strings.TrimSuffix(p, "/")
	}
	return p
}

// ContainsFold reports whether set holds p, ignoring case.
func ContainsFold(set []string, p string) bool {
	for _, s := range set {
		if strings.EqualFold(s, p) {
			return true
		}
	}
	return false
}
