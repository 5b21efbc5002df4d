package main

import (
	"fmt"

	prepserver "github.com/HendryAvila/llm-prep/internal/server"
	"github.com/HendryAvila/llm-prep/internal/updater"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "llmprep v%s\n", prepserver.Version)
			if !check {
				return nil
			}
			res := updater.Check(cmd.Context(), prepserver.Version)
			switch {
			case res.UpdateAvailable:
				fmt.Fprintf(out, "Update available: v%s -> v%s\n%s\n", res.CurrentVersion, res.LatestVersion, res.ReleaseURL)
			case res.LatestVersion == "":
				fmt.Fprintln(out, "Could not determine the latest release.")
			default:
				fmt.Fprintln(out, "Already at the latest version.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
