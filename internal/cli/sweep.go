package cli

import (
	"context"
	"fmt"

	intconfig "tripmarket/internal/config"
	"tripmarket/internal/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep-overdue",
	Short: "Flag bookings whose payment deadline has passed",
	Long: `Flag bookings whose payment deadline has passed.

PENDING bookings with nothing paid move to NOTPAID; partially paid
confirmed bookings keep their status and get payment status OVERDUE.
Meant to be run from cron.`,
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

		a := buildApp(env, db)
		defer a.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = utils.WithRequestID(ctx, "sweep-"+uuid.NewString())
		n, err := a.api.Bookings.MarkOverdue(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d bookings flagged overdue\n", n)
		return nil
	},
}
