package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theplant/adminquery/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

func init() {
	migrateCmd.AddCommand(
		migrateDirectionCmd(db.Up, "Apply all pending migrations"),
		migrateDirectionCmd(db.Down, "Revert all migrations"),
		migrateVersionCmd,
	)
}

func migrateDirectionCmd(direction db.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(direction),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := db.Migrate(cmd.Context(), e.db, direction); err != nil {
				return err
			}
			e.log.Info().Str("direction", string(direction)).Msg("migrations done")
			return nil
		},
	}
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		version, dirty, err := db.Version(cmd.Context(), e.db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d", version)
		if dirty {
			fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}
