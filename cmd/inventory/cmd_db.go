package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/inventory/database/migrations"
	"github.com/shashiranjanraj/inventory/database/seeders"
	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/migration"
)

func runner() (*migration.Runner, error) {
	db, _, err := bootDB()
	if err != nil {
		return nil, err
	}
	return migrations.Register(migration.New(db)), nil
}

// inventory migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Running migrations…")
		n, err := r.Run()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Ran %d migration(s).\n", n)
		return nil
	},
}

// inventory migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Rolling back last batch…")
		n, err := r.Rollback()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s).\n", n)
		return nil
	},
}

// inventory migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner()
		if err != nil {
			return err
		}
		statuses, err := r.Status()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MIGRATION\tRAN\tBATCH")
		for _, st := range statuses {
			ran, batch := "no", "-"
			if st.Ran {
				ran, batch = "yes", fmt.Sprint(st.Batch)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", st.Name, ran, batch)
		}
		return tw.Flush()
	},
}

// inventory seed [name...]
var seedCmd = &cobra.Command{
	Use:       "seed [name...]",
	Short:     "Run database seeders (all when no name is given)",
	ValidArgs: seeders.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := bootStore()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.Run(cmd.Context(), st, logger.With("seeder"), args...)
	},
}
