package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	closeDB()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "inventory",
	Short:         "Inventory product store CLI",
	Long:          "Manage the product inventory database: run migrations, seed data and work with products.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if dumpMetrics {
			return writeMetrics(cmd.OutOrStdout())
		}
		return nil
	},
}

var (
	dbPath      string
	authority   string
	dumpMetrics bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (overrides INVENTORY_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&authority, "authority", "", "store authority (overrides INVENTORY_STORE_AUTHORITY)")
	rootCmd.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false, "print store metrics after the command")

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Products
	rootCmd.AddCommand(productCmd)
}
