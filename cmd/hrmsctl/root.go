package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go-hrms/internal/app"
	"go-hrms/internal/bootstrap"
	"go-hrms/internal/config"
	"go-hrms/internal/shared/apperror"
)

// opener connects the infrastructure for one command invocation.
type opener func(ctx context.Context, envFiles []string) (*app.App, *app.Modules, error)

type cli struct {
	open     opener
	out      io.Writer
	envFiles []string
}

func openApp(_ context.Context, envFiles []string) (*app.App, *app.Modules, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, nil, err
	}
	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	apperror.Init()

	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	m, err := a.Modules()
	if err != nil {
		_ = a.Close()
		return nil, nil, err
	}
	return a, m, nil
}

func newRootCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hrmsctl",
		Short:         "HRMS operations: schema, tenants and leave accrual",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", []string{".env"}, "Dotenv files loaded before the environment")

	cmd.AddCommand(newMigrateCmd(c))
	cmd.AddCommand(newCompanyCmd(c))
	cmd.AddCommand(newAccrualCmd(c))
	return cmd
}

// withApp opens the app for fn and closes it afterwards.
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, m *app.Modules) error) error {
	a, m, err := c.open(cmd.Context(), c.envFiles)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a, m)
}

func execute() {
	c := &cli{open: openApp, out: os.Stdout}
	if err := newRootCmd(c).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
