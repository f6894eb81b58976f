package cli

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intconfig "tripmarket/internal/config"
	intdb "tripmarket/internal/db"
	"tripmarket/internal/utils"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables",
	Long: `Create every table the API needs when it does not exist yet.

Existing tables are left untouched, so the command is safe to re-run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return err
		}
		db, err := intconfig.ConnectDB(env)
		if err != nil {
			return err
		}
		defer intconfig.CloseDB()
		return migrate(cmd.Context(), db)
	},
}

func migrate(ctx context.Context, db *sql.DB) error {
	if ctx == nil {
		ctx = context.Background()
	}
	created, err := intdb.EnsureSchema(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(created) == 0 {
		utils.Log.Info("schema up to date")
		return nil
	}
	utils.Log.WithField("tables", strings.Join(created, ",")).Info("tables created")
	return nil
}
