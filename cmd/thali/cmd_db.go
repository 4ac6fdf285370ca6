package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	_ "github.com/shashiranjanraj/thali/database/migrations"
	"github.com/shashiranjanraj/thali/database/seeders"
	"github.com/shashiranjanraj/thali/internal/kernel"
	"github.com/shashiranjanraj/thali/pkg/database"
	"github.com/shashiranjanraj/thali/pkg/migration"
)

// withDB opens the configured database for the duration of fn.
func withDB(fn func(db *gorm.DB) error) error {
	db, err := kernel.OpenDatabase()
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck
	return fn(db)
}

// thali migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Running migrations…")
			ran, err := migration.New(db).Run(cmd.Context())
			for _, name := range ran {
				fmt.Fprintf(out, "  ✔ %s\n", name)
			}
			if err == nil && len(ran) == 0 {
				fmt.Fprintln(out, "  Nothing to migrate.")
			}
			return err
		})
	},
}

// thali migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Rolling back last batch…")
			rolled, err := migration.New(db).Rollback(cmd.Context())
			for _, name := range rolled {
				fmt.Fprintf(out, "  ↩ %s\n", name)
			}
			if err == nil && len(rolled) == 0 {
				fmt.Fprintln(out, "  Nothing to roll back.")
			}
			return err
		})
	},
}

// thali migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			statuses, err := migration.New(db).Status(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "RAN?\tMIGRATION\tBATCH")
			for _, s := range statuses {
				ran, batch := "No", "-"
				if s.Ran {
					ran, batch = "Yes", fmt.Sprint(s.Batch)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", ran, s.Name, batch)
			}
			return w.Flush()
		})
	},
}

// thali seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
			return seeders.RunAll(cmd.Context(), db, cmd.OutOrStdout())
		})
	},
}
