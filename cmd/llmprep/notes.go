package main

import (
	"fmt"

	"github.com/HendryAvila/llm-prep/internal/config"
	"github.com/HendryAvila/llm-prep/internal/notes"
	"github.com/spf13/cobra"
)

func notesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage notes under " + config.NotesDir,
	}

	var (
		days int
		root string
	)
	clean := &cobra.Command{
		Use:   "clean",
		Short: "Delete markdown notes older than --days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := a.settings.ResolveProjectPath(root)
			if err != nil {
				return err
			}
			n, err := notes.Clean(config.NotesPath(dir), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d note(s) older than %d day(s)\n", n, days)
			return nil
		},
	}
	clean.Flags().IntVar(&days, "days", 7, "age threshold in days")
	clean.Flags().StringVarP(&root, "root", "r", ".", "project root")

	cmd.AddCommand(clean)
	return cmd
}
