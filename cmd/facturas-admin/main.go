package main

import (
	"os"

	"github.com/spf13/cobra"

	"facturas/internal/config"
	applog "facturas/internal/log"
)

// globals are the flags shared by every subcommand.
type globals struct {
	dbPath       string
	settingsPath string
	logLevel     string
}

func main() {
	config.LoadEnvFile()
	if err := newRootCommand(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:   "facturas-admin",
		Short: "Maintenance tasks for the facturas database",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			applog.Setup("admin", "text", g.logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&g.dbPath, "db", cfg.SQLiteDBPath, "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&g.settingsPath, "settings", cfg.SettingsPath, "settings JSON path")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(
		newMigrateCommand(g),
		newSeedCommand(g),
		newImportCommand(g, cfg),
		newRenumberCheckCommand(g),
		newAuditCommand(g),
	)
	return rootCmd
}
