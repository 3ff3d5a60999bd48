package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := bootstrap()
		if err != nil {
			return err
		}

		// Opening the store migrates it; running Migrate again reports the
		// version without applying anything.
		store, err := openStore(cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		version, err := store.Migrate(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, cfg.Database.Path)
		return nil
	},
}
