package command

import (
	"errors"
	"fmt"

	"elibrary/database"

	"github.com/spf13/cobra"
)

var allowExisting bool

// migrateCmd creates the catalog schema. It is a one-shot operation: an
// existing schema is an error unless --allow-existing is given.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the users and books tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}

		db, err := database.Open(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		err = database.CreateSchema(cmd.Context(), db.Pool, logger)
		if errors.Is(err, database.ErrDuplicateSchema) {
			if allowExisting {
				logger.Info("catalog_schema_exists")
				return nil
			}
			return fmt.Errorf("%w (rerun with --allow-existing to accept it)", err)
		}
		return err
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&allowExisting, "allow-existing", false, "treat an existing schema as success")
}
