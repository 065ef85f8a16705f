package commands

import (
	"fmt"

	"github.com/bluehaven/rentals/internal/db"

	"github.com/spf13/cobra"
)

var migrationsDir string

// migrateCmd applies the SQL migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the SQL migrations",
	Long: `Apply every *.up.sql file in the migrations directory in name order.
The files are re-runnable, applying them twice is safe.

Examples:
  rentalsctl migrate
  rentalsctl migrate --dir ./migrations`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := migrationsDir
		if dir == "" {
			dir = cfg.Database.MigrationsDir
		}

		conn, err := db.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("connect mysql: %w", err)
		}
		defer conn.Close()

		if err := db.Migrate(cmd.Context(), conn, dir); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "migrations from %s applied\n", dir)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "Directory for migration files (defaults to DB_MIGRATIONS_DIR)")
}
