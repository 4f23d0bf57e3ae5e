package main

import (
	"context"

	"github.com/spf13/cobra"

	"go-hrms/internal/app"
)

func newCompanyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage tenants",
	}
	cmd.AddCommand(newCompanyCreateCmd(c))
	return cmd
}

func newCompanyCreateCmd(c *cli) *cobra.Command {
	var req app.ProvisionRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a company with its first ADMIN login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, _ *app.App, m *app.Modules) error {
				res, err := m.Provision(ctx, req)
				if err != nil {
					return err
				}
				return writeJSON(c.out, res)
			})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Company name (required)")
	cmd.Flags().StringVar(&req.EmailDomain, "domain", "", "Email domain of the company, e.g. mycompany.com (required)")
	cmd.Flags().StringVar(&req.Timezone, "timezone", "UTC", "IANA timezone used for leave dates")
	cmd.Flags().StringVar(&req.AdminUsername, "admin-username", "admin", "Username of the first admin")
	cmd.Flags().StringVar(&req.AdminEmail, "admin-email", "", "Email of the first admin, on the company domain (required)")
	cmd.Flags().StringVar(&req.AdminPassword, "admin-password", "", "Password of the first admin (required)")
	for _, f := range []string{"name", "domain", "admin-email", "admin-password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
