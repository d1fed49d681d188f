package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/division-ops/operations"
)

var importFlags struct {
	actor int64
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load records from an .xlsx workbook (sheet \"data\")",
}

func init() {
	importCmd.PersistentFlags().Int64Var(&importFlags.actor, "actor", 0, "employee number the imported records are attributed to")
	importCmd.MarkPersistentFlagRequired("actor")

	importCmd.AddCommand(importRunner("attendance", "Assign attendance points", (*operations.Service).ImportAttendance))
	importCmd.AddCommand(importRunner("safety", "Assign safety points", (*operations.Service).ImportSafetyPoints))
	importCmd.AddCommand(importRunner("drivers", "Hire drivers from a roster", (*operations.Service).ImportDrivers))
}

type importFunc func(s *operations.Service, ctx context.Context, actor int64, r io.Reader) (*operations.ImportReport, error)

func importRunner(use, short string, run importFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			report, err := run(a.svc, ctx, importFlags.actor, f)
			if err != nil {
				return err
			}
			a.flush(ctx)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d row(s), rejected %d\n", report.Imported, len(report.Rejected))
			for _, rej := range report.Rejected {
				fmt.Fprintf(out, "  row %d: %s\n", rej.Row, rej.Reason)
			}
			return nil
		},
	}
}
