package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"go-hrms/internal/accrual"
	"go-hrms/internal/app"
)

func newAccrualCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accrual",
		Short: "Monthly leave accrual",
	}
	cmd.AddCommand(newAccrualRunCmd(c))
	cmd.AddCommand(newAccrualScheduleCmd(c))
	return cmd
}

func newAccrualRunCmd(c *cli) *cobra.Command {
	now := time.Now().UTC()
	var (
		month  int
		year   int
		dryRun bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Credit one month to every eligible employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := accrual.NewPeriod(year, month); err != nil {
				return fmt.Errorf("--month %d --year %d: %w", month, year, err)
			}
			return c.withApp(cmd, func(ctx context.Context, _ *app.App, m *app.Modules) error {
				res, err := m.Accrual.Run(ctx, accrual.RunRequest{Month: month, Year: year, DryRun: dryRun})
				if err != nil {
					return err
				}

				if asJSON {
					if err := writeJSON(c.out, res); err != nil {
						return err
					}
				} else {
					fmt.Fprintf(c.out, "%s: processed %d employees (credited %d, skipped %d)\n",
						res.Period, res.Employees, res.Credited, res.Skipped)
				}
				// per-employee failures are logged by the service and do not fail the run
				if res.Failed > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "%d employees failed, see logs\n", res.Failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&month, "month", int(now.Month()), "Month to credit, 1-12")
	cmd.Flags().IntVar(&year, "year", now.Year(), "Year to credit")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be credited without writing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full run result as JSON")
	return cmd
}

func newAccrualScheduleCmd(c *cli) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the current month on a ticker until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App, m *app.Modules) error {
				if interval > 0 {
					a.Config.Leave.AccrualInterval = interval
				}

				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				scheduler := a.NewScheduler(m)
				scheduler.Start(ctx)
				<-ctx.Done()
				scheduler.Stop()
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Tick interval (default from ACCRUAL_SCHEDULE_INTERVAL)")
	return cmd
}
