package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trezcool/timeac/core/admin"
)

func (cli *commandLine) resetPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resetpassword",
		Short: "Replace the admin panel password. The new password is prompted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprint(out, "Enter password:")
			pwd, err := readPasswordFunc(int(syscall.Stdin))
			fmt.Fprintln(out)
			if err != nil {
				return err
			}
			if len(pwd) == 0 {
				_ = cmd.Usage()
				return errHelp
			}

			fmt.Fprint(out, "Confirm password:")
			confirm, err := readPasswordFunc(int(syscall.Stdin))
			fmt.Fprintln(out)
			if err != nil {
				return err
			}

			if err = cli.ensureSchema(cmd.Context()); err != nil {
				return err
			}
			return cli.resetPassword(cmd, string(pwd), string(confirm))
		},
	}
}

func (cli *commandLine) resetPassword(cmd *cobra.Command, pwd, confirm string) error {
	cp := admin.ChangePassword{Password: pwd, PasswordConfirm: confirm}
	if err := cli.adminSvc.ChangePassword(cmd.Context(), cp); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Password changed successfully.")
	return nil
}
