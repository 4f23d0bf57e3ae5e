package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"go-hrms/internal/app"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App, _ *app.Modules) error {
				if err := app.Migrate(ctx, a.DB); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "schema up to date")
				return nil
			})
		},
	}
}
