// llmprep: LLM context preparation MCP server
//
// Assembles selected source files, analysis documents and notes into a
// single markdown context document, exposed over MCP (stdio) and as a CLI.
//
// Usage:
//
//	llmprep serve                      # Start MCP server (stdio transport)
//	llmprep prepare -f main.go:entry   # Build a context document
//	llmprep analyze .                  # Classify a project and suggest ignores
//	llmprep notes clean --days 7       # Remove old notes
//	llmprep history show <id>          # Show a recorded document
package main

import (
	"fmt"
	"os"

	prepserver "github.com/HendryAvila/llm-prep/internal/server"
	"github.com/HendryAvila/llm-prep/internal/settings"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the root command has run.
type app struct {
	settings settings.Settings
	debug    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "llmprep",
		Short:         "Prepare project context documents for LLMs",
		Version:       prepserver.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := settings.Load()
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}
			if a.debug {
				s.Debug = true
			}
			a.settings = s
			prepserver.SetupLogging(cmd.ErrOrStderr(), s.Debug)
			return nil
		},
		// Bare "llmprep" starts the server, matching how MCP hosts launch it.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging on stderr")

	root.AddCommand(
		serveCmd(a),
		prepareCmd(a),
		analyzeCmd(a),
		notesCmd(a),
		historyCmd(a),
		versionCmd(),
	)
	return root
}
