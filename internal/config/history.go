package config

import (
	"strings"
	"time"

	"github.com/HendryAvila/llm-prep/internal/patterns"
	"github.com/HendryAvila/llm-prep/internal/prepfail"
)

// Action is a tree_ignore update kind.
type Action string

const (
	ActionSet    Action = "set"
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionAuto   Action = "auto"
)

// Actions lists the accepted update kinds, for tool schemas.
var Actions = []string{string(ActionSet), string(ActionAdd), string(ActionRemove), string(ActionAuto)}

// ParseAction validates a caller-supplied action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionSet, ActionAdd, ActionRemove, ActionAuto:
		return a, nil
	}
	return "", prepfail.Validation("unknown action %q (expected one of %s)", s, strings.Join(Actions, ", "))
}

// IgnoreUpdate describes one change to tree_ignore. For ActionAuto,
// Patterns carries the analyzer's critical and recommended tiers.
type IgnoreUpdate struct {
	Action   Action
	Patterns []string
	Reason   string
}

// UpdateIgnore applies u to cfg. On a validation failure cfg is left
// untouched and no history entry is written; the returned Result still
// carries the errors and the candidate joined string.
func UpdateIgnore(cfg *ProjectConfig, u IgnoreUpdate, maxLen int) (patterns.Result, error) {
	current := cfg.Patterns()
	given := patterns.Normalize(u.Patterns)

	var next []string
	switch u.Action {
	case ActionSet:
		next = given
	case ActionAdd:
		if len(given) == 0 {
			return patterns.Result{}, prepfail.Validation("add requires at least one pattern")
		}
		next = patterns.Normalize(append(current, given...))
	case ActionRemove:
		if len(given) == 0 {
			return patterns.Result{}, prepfail.Validation("remove requires at least one pattern")
		}
		next = make([]string, 0, len(current))
		for _, p := range current {
			if !patterns.ContainsFold(given, p) {
				next = append(next, p)
			}
		}
	case ActionAuto:
		next = given
	default:
		return patterns.Result{}, prepfail.Validation("unknown action %q", u.Action)
	}

	res := patterns.Validate(next, maxLen)
	if !res.OK() {
		return res, prepfail.Validation("invalid patterns: %s", strings.Join(res.Errors, "; "))
	}

	cfg.TreeIgnore = res.Joined
	cfg.TreeIgnoreHistory = append([]IgnoreChange{{
		Timestamp: timestamp(),
		Patterns:  res.Joined,
		Action:    u.Action,
		Reason:    u.Reason,
	}}, cfg.TreeIgnoreHistory...)
	if len(cfg.TreeIgnoreHistory) > MaxIgnoreHistory {
		cfg.TreeIgnoreHistory = cfg.TreeIgnoreHistory[:MaxIgnoreHistory]
	}
	return res, nil
}

// RecordGeneration puts a document at the front of RecentContexts.
func RecordGeneration(cfg *ProjectConfig, output, summary string) {
	cfg.RecentContexts = append([]RecentContext{{
		Timestamp:   timestamp(),
		Output:      output,
		Description: summary,
	}}, cfg.RecentContexts...)
	if len(cfg.RecentContexts) > MaxRecentContexts {
		cfg.RecentContexts = cfg.RecentContexts[:MaxRecentContexts]
	}
}

// Recent returns at most limit entries of RecentContexts; limit <= 0
// means all.
func (c *ProjectConfig) Recent(limit int) []RecentContext {
	if limit <= 0 || limit > len(c.RecentContexts) {
		return c.RecentContexts
	}
	return c.RecentContexts[:limit]
}

func timestamp() string {
	return timeNow().UTC().Format(time.RFC3339)
}
