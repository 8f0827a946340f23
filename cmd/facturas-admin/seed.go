package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"facturas/internal/core"
	"facturas/internal/services"
	"facturas/internal/storage"
)

var (
	sampleClients = []core.Client{
		{Name: "Acme Iberia SL", TaxID: "B12345678", Address: "Calle Mayor 1, Madrid", Country: "Spain", Email: "admin@acme.example"},
		{Name: "Northwind Ltd", TaxID: "GB123456789", Address: "1 King Street, London", Country: "United Kingdom", Currency: core.Currency{Code: "GBP"}},
		{Name: "Globex Inc", TaxID: "US-98-7654321", Address: "500 Market St, San Francisco", Country: "United States", Currency: core.Currency{Code: "USD"}},
	}
	sampleServices = []core.Service{
		{Description: "Consultoría técnica", UnitPrice: decimal.RequireFromString("60.00"), UnitType: "hora"},
		{Description: "Mantenimiento mensual", UnitPrice: decimal.RequireFromString("450.00"), UnitType: "mes"},
	}
)

func newSeedCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample clients and services into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := storage.NewSQLiteRepository(g.dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()
			return seed(cmd, repo)
		},
	}
}

func seed(cmd *cobra.Command, repo *storage.SQLiteRepository) error {
	ctx := cmd.Context()
	clients := services.NewClientService(repo, nil)
	catalog := services.NewCatalogService(repo)

	existing, err := clients.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "database already has %d clients, nothing to seed\n", len(existing))
		return nil
	}

	for _, c := range sampleClients {
		saved, err := clients.Save(ctx, c)
		if err != nil {
			return fmt.Errorf("seed client %s: %w", c.Name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "client %d  %s\n", saved.ID, saved.Name)
	}
	for _, s := range sampleServices {
		saved, err := catalog.Save(ctx, s)
		if err != nil {
			return fmt.Errorf("seed service %s: %w", s.Description, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "service %d  %s\n", saved.ID, saved.Description)
	}
	return nil
}
