package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/operations"
)

var jobFlags struct {
	asOf string
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send the unsigned-document reminders due today (or --as-of)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		asOf, err := a.parseAsOf(jobFlags.asOf)
		if err != nil {
			return err
		}
		report, err := a.svc.SendReminders(ctx, asOf)
		if err != nil {
			return err
		}
		a.flush(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d reminder(s) queued\n", report.AsOf.Format(hr.DateLayout), report.Notifications)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Refill yearly balances",
}

type resetFunc func(s *operations.Service, ctx context.Context, asOf time.Time) (int, error)

func resetRunner(use, short string, run resetFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			asOf, err := a.parseAsOf(jobFlags.asOf)
			if err != nil {
				return err
			}
			n, err := run(a.svc, ctx, asOf)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d employee(s) reset\n", asOf.Format(hr.DateLayout), n)
			return nil
		},
	}
}

func init() {
	remindCmd.Flags().StringVar(&jobFlags.asOf, "as-of", "", "run as of this date (YYYY-MM-DD)")
	resetCmd.PersistentFlags().StringVar(&jobFlags.asOf, "as-of", "", "run as of this date (YYYY-MM-DD)")

	resetCmd.AddCommand(resetRunner("sick", "Reset paid and unpaid sick days (run on October 1)", (*operations.Service).ResetSickDays))
	resetCmd.AddCommand(resetRunner("floating", "Reset floating holidays (run on January 1)", (*operations.Service).ResetFloatingHolidays))
}
