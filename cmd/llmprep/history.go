package main

import (
	"fmt"

	"github.com/HendryAvila/llm-prep/internal/ledger"
	"github.com/HendryAvila/llm-prep/internal/tools"
	"github.com/spf13/cobra"
)

func historyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the ledger of generated context documents",
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(func(l *ledger.Ledger) error {
				e, err := l.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), tools.FormatLedgerEntry(e))
				return nil
			})
		},
	}

	forget := &cobra.Command{
		Use:   "forget <id>",
		Short: "Remove one document from the ledger; the file itself is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(func(l *ledger.Ledger) error {
				if err := l.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the ledger\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(show, forget)
	return cmd
}

// withLedger opens the ledger for one command. Unlike the server, the CLI
// treats an unavailable ledger as an error.
func (a *app) withLedger(fn func(*ledger.Ledger) error) error {
	l, err := ledger.New(ledger.DefaultConfig(a.settings.LedgerDir))
	if err != nil {
		return err
	}
	defer l.Close()
	return fn(l)
}
