package main

import (
	"fmt"

	"github.com/HendryAvila/llm-prep/internal/analyzer"
	"github.com/spf13/cobra"
)

func analyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [root]",
		Short: "Classify a project and suggest ignore patterns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			root, err := a.settings.ResolveProjectPath(target)
			if err != nil {
				return err
			}
			res, sug, err := analyzer.New(a.settings).Suggest(cmd.Context(), root)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), analyzer.FormatReport(res, sug))
			return nil
		},
	}
}
