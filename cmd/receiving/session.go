package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dockside/receiving/internal/cli"
	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/service"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in and remember the session",
		Long: `Sign in to the backend. The session cookie is stored in the offline cache so
later commands and the terminal interface start signed in.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			reader := cli.NewNonBlockingReader(cmd.InOrStdin())

			var username string
			if len(args) == 1 {
				username = args[0]
			} else {
				fmt.Fprint(out, cli.FormatPrompt("Username"))
				if username, err = reader.ReadLine(ctx); err != nil {
					return err
				}
			}
			fmt.Fprint(out, cli.FormatPrompt("Password"))
			password, err := reader.ReadSecret(ctx)
			fmt.Fprintln(out)
			if err != nil {
				return err
			}
			if username == "" || password == "" {
				return common.Validation("Please enter username and password")
			}

			staff, err := (sessionBackend{Client: a.client, app: a}).Login(ctx, username, password)
			if err != nil {
				return common.NewUserError(backendMessage(err, "Login failed"), err)
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Signed in as %s (%s)", staff.DisplayName, staff.Role)))
			return nil
		},
	}
}

// backendMessage is the backend's own error text, else fallback.
func backendMessage(err error, fallback string) string {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return common.UserMessage(err, fallback)
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := (sessionBackend{Client: a.client, app: a}).Logout(ctx); err != nil && !errors.Is(err, common.ErrNotAuthenticated) {
				fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning("Backend logout failed; local session cleared"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Signed out"))
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who the stored session belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.client.AuthStatus(ctx)
			if err != nil {
				return signedIn(err)
			}
			if !status.Authenticated || status.Staff == nil {
				return signedIn(common.ErrNotAuthenticated)
			}
			staff := status.Staff
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("%s (%s, %s)", staff.DisplayName, staff.Username, staff.Role)))
			return nil
		},
	}
}
