package analyzer

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatReport renders an analysis and its suggestion as the plain-text
// block returned by analyze_project_structure.
func FormatReport(a *Analysis, s *Suggestion) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📁 Project: %s\n", a.Root)
	fmt.Fprintf(&sb, "🧠 Detected type: %s\n\n", a.ProjectType)

	sb.WriteString("Indicators:\n")
	fmt.Fprintf(&sb, "  %s\n", listOrNone(a.Indicators))
	fmt.Fprintf(&sb, "Build tools: %s\n\n", listOrNone(a.BuildTools))

	sb.WriteString("Large directories:\n")
	if len(a.BigDirs) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, d := range a.BigDirs {
		fmt.Fprintf(&sb, "  - %s ~ %s (%s bytes)\n", d.Name, humanize.Bytes(uint64(d.Bytes)), humanize.Comma(d.Bytes))
	}

	sb.WriteString("\nCompiled/binary footprints found:\n")
	fmt.Fprintf(&sb, "  %s\n", listOrNone(a.CompiledPresent))

	if a.Truncated {
		sb.WriteString("\n⚠️  Scan hit its time or depth bound; sizes may be understated.\n")
	}

	sb.WriteString("\nSuggested patterns:\n")
	fmt.Fprintf(&sb, "  %s: %s\n", TierCritical, listOrNone(s.Critical))
	fmt.Fprintf(&sb, "  %s: %s\n", TierRecommended, listOrNone(s.Recommended))
	fmt.Fprintf(&sb, "  %s: %s", TierOptional, listOrNone(s.Optional))

	return sb.String()
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
