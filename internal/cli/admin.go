package cli

import (
	"fmt"
	"text/tabwriter"

	"feastiq/internal/repository/gormrepo"
	"feastiq/internal/service/auth"

	"github.com/spf13/cobra"
)

func (c *CLI) newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}
	cmd.AddCommand(c.newAdminAddCmd())
	cmd.AddCommand(c.newAdminPasswdCmd())
	cmd.AddCommand(c.newAdminListCmd())
	return cmd
}

func (c *CLI) newAdminAddCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an administrator account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withAuthenticator(func(a *auth.Authenticator) error {
				if err := a.AddAdmin(cmd.Context(), args[0], password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin %q created\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *CLI) newAdminPasswdCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Change an administrator password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withAuthenticator(func(a *auth.Authenticator) error {
				if err := a.SetPassword(cmd.Context(), args[0], password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password for %q updated\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *CLI) newAdminListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List administrator accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.bootstrap("stderr")
			if err != nil {
				return err
			}
			defer a.close()

			admins, err := gormrepo.NewAdminRepository(a.db).ListAdmins(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "USERNAME\tCREATED\tLAST LOGIN")
			for _, admin := range admins {
				lastLogin := "never"
				if admin.LastLoginAt != nil {
					lastLogin = admin.LastLoginAt.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", admin.Username, admin.CreatedAt.Format("2006-01-02 15:04"), lastLogin)
			}
			return w.Flush()
		},
	}
}

func (c *CLI) withAuthenticator(fn func(*auth.Authenticator) error) error {
	a, err := c.bootstrap("stderr")
	if err != nil {
		return err
	}
	defer a.close()

	return fn(auth.NewAuthenticator(gormrepo.NewAdminRepository(a.db), a.cfg.AdminConfig.Password, a.logger))
}
