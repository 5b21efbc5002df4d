package assembler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/llm-prep/internal/prepfail"
)

// Resolve maps a caller-supplied path onto the project root and returns
// the absolute path plus the slash-separated path relative to the root.
//
// Policy:
//  1. relative paths are joined to the root;
//  2. absolute paths inside the root are accepted;
//  3. absolute paths outside the root are re-rooted by stripping the
//     leading separator, if that file exists under the root;
//  4. anything still outside the root, before or after symlink
//     evaluation, is rejected with a validation error.
//
// Existence is not checked beyond step 3; reading reports NotFound.
func (a *Assembler) Resolve(p string) (abs, rel string, err error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", "", prepfail.Validation("empty path")
	}
	p = filepath.FromSlash(p)

	switch {
	case !filepath.IsAbs(p):
		abs = filepath.Join(a.root, p)
	case within(a.root, p):
		abs = filepath.Clean(p)
	case within(a.realRoot, p):
		r, _ := filepath.Rel(a.realRoot, p)
		abs = filepath.Join(a.root, r)
	default:
		candidate := filepath.Join(a.root, strings.TrimLeft(p, `/\`))
		if _, statErr := os.Stat(candidate); statErr == nil {
			abs = candidate
		} else {
			return "", "", prepfail.Validation("path %s is outside the project root", p)
		}
	}

	if !within(a.root, abs) {
		return "", "", prepfail.Validation("path %s is outside the project root", p)
	}
	if real, evalErr := filepath.EvalSymlinks(abs); evalErr == nil && !within(a.realRoot, real) {
		return "", "", prepfail.Validation("path %s resolves outside the project root", p)
	}

	r, err := filepath.Rel(a.root, abs)
	if err != nil {
		return "", "", prepfail.Validation("path %s: %v", p, err)
	}
	return abs, filepath.ToSlash(r), nil
}

// within reports whether p is root or a descendant of it. Both must be
// absolute and clean.
func within(root, p string) bool {
	r, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) && !filepath.IsAbs(r)
}
