package assembler

import (
	"fmt"
	"path/filepath"
	"strings"
)

const ruleWidth = 60

// codeLanguages maps extensions that get line numbers to their fence hint.
var codeLanguages = map[string]string{
	".py": "python", ".js": "javascript", ".ts": "typescript", ".jsx": "jsx",
	".tsx": "tsx", ".java": "java", ".c": "c", ".cpp": "cpp", ".h": "c",
	".hpp": "cpp", ".cs": "csharp", ".go": "go", ".rs": "rust", ".rb": "ruby",
	".php": "php", ".swift": "swift", ".kt": "kotlin", ".scala": "scala",
	".r": "r", ".m": "objectivec", ".sh": "bash", ".bash": "bash", ".zsh": "zsh",
	".fish": "fish", ".sql": "sql", ".html": "html", ".css": "css",
	".scss": "scss", ".sass": "sass", ".less": "less", ".graphql": "graphql",
	".proto": "protobuf",
}

// plainLanguages are fenced with a hint but not numbered.
var plainLanguages = map[string]string{
	".json": "json", ".yaml": "yaml", ".yml": "yaml", ".toml": "toml",
	".xml": "xml", ".md": "markdown", ".txt": "text",
}

// Render composes the document. It performs no writes.
func (a *Assembler) Render() string {
	var sb strings.Builder

	sb.WriteString("# LLM Context Document\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n", a.generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Project Root: %s\n\n", a.root)

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Files in focus: %d\n", len(a.files))
	fmt.Fprintf(&sb, "- Context documents: %d\n", len(a.dumps))
	fmt.Fprintf(&sb, "- General notes: %d\n", len(a.notes)+len(a.noteFiles))
	if a.ignore != "" {
		fmt.Fprintf(&sb, "- Tree ignore: `%s`\n", a.ignore)
	}
	sb.WriteString("\n")

	sb.WriteString("## Project Structure\n\n")
	sb.WriteString("```\n")
	sb.WriteString(a.renderTree())
	sb.WriteString("```\n\n")

	if len(a.files) > 0 {
		sb.WriteString("## File Contents\n\n")
		for _, f := range a.files {
			writeFile(&sb, f)
		}
	}

	if len(a.dumps) > 0 {
		sb.WriteString("## Context & Analysis Documents\n\n")
		for _, d := range a.dumps {
			fmt.Fprintf(&sb, "### 📄 %s\n\n", d.Title)
			if d.Path != "" {
				fmt.Fprintf(&sb, "*Source: %s*\n\n", d.Path)
			}
			sb.WriteString(strings.TrimRight(d.Content, "\n"))
			sb.WriteString("\n\n")
		}
	}

	if len(a.notes) > 0 || len(a.noteFiles) > 0 {
		sb.WriteString("## General Context & Notes\n\n")
		for i, n := range a.notes {
			fmt.Fprintf(&sb, "**Note %d:** %s\n\n", i+1, n)
		}
		for _, nf := range a.noteFiles {
			fmt.Fprintf(&sb, "### 📝 %s\n\n", nf.Path)
			sb.WriteString(strings.TrimRight(nf.Content, "\n"))
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString("---\n")
	sb.WriteString("*End of context document.*\n")
	return sb.String()
}

func writeFile(sb *strings.Builder, f File) {
	fmt.Fprintf(sb, "### File: %s%s\n\n", f.Path, focusMark)
	if f.Note != "" {
		fmt.Fprintf(sb, "**Note:** %s\n\n", f.Note)
	}
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	if f.Binary {
		sb.WriteString(f.Content + "\n\n")
		return
	}

	ext := strings.ToLower(filepath.Ext(f.Path))
	lang, numbered := codeLanguages[ext]
	if !numbered {
		lang = plainLanguages[ext]
	}
	fence := fenceFor(f.Content)

	sb.WriteString(fence + lang + "\n")
	body := strings.TrimSuffix(f.Content, "\n")
	if body != "" {
		lines := strings.Split(body, "\n")
		for i, line := range lines {
			if numbered {
				fmt.Fprintf(sb, "%4d| %s\n", i+1, line)
			} else {
				sb.WriteString(line + "\n")
			}
		}
	}
	sb.WriteString(fence + "\n\n")
}

// fenceFor returns a backtick fence longer than any run inside content.
func fenceFor(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
