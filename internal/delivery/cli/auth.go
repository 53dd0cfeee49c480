package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kaiginote/internal/delivery/views"
	"kaiginote/internal/domain"
)

func newRegisterCommand(e *env) *cobra.Command {
	var reg domain.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.app.open(domain.RouteRegister); err != nil {
				return err
			}
			user, err := views.NewRegisterView(e.app.Auth, e.app.Router).Submit(cmd.Context(), reg)
			if err != nil {
				return err
			}
			return e.printer(cmd).user(user)
		},
	}
	cmd.Flags().StringVar(&reg.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&reg.Password, "password", "", "Password (at least 8 characters)")
	cmd.Flags().StringVar(&reg.ConfirmPassword, "confirm", "", "Password again")
	return cmd
}

func newLoginCommand(e *env) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.app.open(domain.RouteLogin); err != nil {
				return err
			}
			if err := views.NewLoginView(e.app.Auth, e.app.Router).Submit(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	return cmd
}

func newLogoutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e.app.Router.Navigate(domain.RouteHome)
			views.NewHeaderView(e.app.Auth, e.app.Router).Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := e.app.Auth.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}
			return e.printer(cmd).user(user)
		},
	}
}
