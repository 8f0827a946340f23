package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"facturas/internal/storage"
)

func newMigrateCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.RunMigrations(g.dbPath); err != nil {
				return err
			}
			return printVersion(cmd, g.dbPath)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.RollbackMigrations(g.dbPath, steps); err != nil {
				return err
			}
			return printVersion(cmd, g.dbPath)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd, g.dbPath)
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func printVersion(cmd *cobra.Command, dbPath string) error {
	v, dirty, ok, err := storage.MigrationVersion(dbPath)
	if err != nil {
		return err
	}
	switch {
	case !ok:
		fmt.Fprintln(cmd.OutOrStdout(), "schema version: none")
	case dirty:
		fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d (dirty)\n", v)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", v)
	}
	return nil
}
