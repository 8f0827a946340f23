package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"facturas/internal/storage"
)

func newRenumberCheckCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "renumber-check",
		Short: "Report invoice or estimate numbers stored more than once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := storage.NewSQLiteRepository(g.dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			dups, err := repo.DuplicateNumbers(cmd.Context())
			if err != nil {
				return err
			}
			if len(dups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "all document numbers are unique")
				return nil
			}
			for _, d := range dups {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s used %d times\n", d.Kind, d.Number, d.Count)
			}
			return fmt.Errorf("%d duplicated document numbers", len(dups))
		},
	}
}

func newAuditCommand(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List the most recent audit events recorded by the worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := storage.NewSQLiteRepository(g.dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			events, err := repo.AuditEvents(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, e := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-24s %-14s %s\n", e.OccurredAt, e.Kind, e.Subject, e.EventID)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of events to show")
	return cmd
}
