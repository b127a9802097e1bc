package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateSkipBranches bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create backend tables and sync the configured branches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		reg, err := cfg.Registry()
		if err != nil {
			return err
		}
		be, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer be.Close() //nolint:errcheck

		if err := be.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate")
		}
		zap.L().Info("migrations applied", zap.String("driver", cfg.Backend.Driver))

		if migrateSkipBranches {
			return nil
		}
		if err := be.SyncBranches(ctx, reg.List()); err != nil {
			return eris.Wrap(err, "sync branches")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrated %s backend, synced %d branches\n", cfg.Backend.Driver, reg.Len())
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSkipBranches, "skip-branches", false, "only apply migrations")
	rootCmd.AddCommand(migrateCmd)
}
