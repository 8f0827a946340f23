package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"facturas/internal/config"
	"facturas/internal/services"
	"facturas/internal/statement"
	"facturas/internal/storage"
)

func newImportCommand(g *globals, cfg *config.Config) *cobra.Command {
	var (
		fromSheets bool
		opts       services.ImportOptions
	)
	cmd := &cobra.Command{
		Use:   "import [statement.csv|statement.xlsx]",
		Short: "Import a bank statement as expenses and incomes",
		Args: func(cmd *cobra.Command, args []string) error {
			if fromSheets {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var reader statement.Reader
			var err error
			if fromSheets {
				if !cfg.SheetsEnabled() {
					return fmt.Errorf("google sheets import needs GOOGLE_CREDENTIALS_FILE and GOOGLE_SPREADSHEET_ID")
				}
				opts.Source = "sheets"
				reader, err = statement.NewSheetsReader(cmd.Context(), cfg.GoogleCredentialsFile, cfg.GoogleSpreadsheetID, cfg.GoogleStatementRange)
			} else {
				opts.Source = filepath.Base(args[0])
				reader, err = openStatement(args[0])
			}
			if err != nil {
				return err
			}

			repo, err := storage.NewSQLiteRepository(g.dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			res, err := services.NewImportService(repo, nil, nil).Import(cmd.Context(), reader, opts)
			if err != nil {
				return err
			}
			printImport(cmd, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromSheets, "sheets", false, "read the configured Google Sheets range instead of a file")
	cmd.Flags().BoolVar(&opts.SkipDuplicates, "skip-duplicates", true, "skip rows that look like existing records")
	cmd.Flags().Int64Var(&opts.DefaultCategory, "default-category", 0, "expense category for rows without a keyword match")
	cmd.Flags().Int64Var(&opts.DefaultSource, "default-source", 0, "income source for rows without a keyword match")
	return cmd
}

func openStatement(path string) (statement.Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return statement.OpenXLSXFile(path)
	case ".csv", ".txt":
		return statement.OpenCSVFile(path)
	default:
		return nil, fmt.Errorf("unsupported statement format %q, use .csv or .xlsx", filepath.Ext(path))
	}
}

func printImport(cmd *cobra.Command, res services.ImportResult) {
	out := cmd.OutOrStdout()
	for _, o := range res.Outcomes {
		if o.ID != 0 {
			fmt.Fprintf(out, "line %-4d %-8s %s %d\n", o.Row, o.Status, o.Kind, o.ID)
		} else {
			fmt.Fprintf(out, "line %-4d %-8s %s\n", o.Row, o.Status, o.Message)
		}
	}
	for _, d := range res.Duplicates {
		fmt.Fprintf(out, "possible duplicate: line %d %q matches %s %d (%d days apart)\n",
			d.Row.Line, d.Row.Description, d.Existing.Kind, d.Existing.ID, d.DaysApart)
	}
	fmt.Fprintf(out, "batch %s: %d imported (%d expenses, %d incomes), %d skipped, %d failed\n",
		res.BatchID, res.Imported, res.Expenses, res.Incomes, res.Skipped, res.Failed)
}
