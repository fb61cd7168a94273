package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) registerCmd() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if name, err = a.valueOrPrompt(name, "Name"); err != nil {
				return err
			}
			if email, err = a.valueOrPrompt(email, "Email"); err != nil {
				return err
			}
			password, err := a.promptPassword()
			if err != nil {
				return err
			}
			if name == "" || email == "" || password == "" {
				return errors.New("name, email and password are required")
			}
			res, err := a.client.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Welcome, %s!\n", res.User.Name)
			return a.showList(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.valueOrPrompt(email, "Email"); err != nil {
				return err
			}
			password, err := a.promptPassword()
			if err != nil {
				return err
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}
			res, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s <%s>\n", res.User.Name, res.User.Email)
			return a.showList(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.sessions.Load()
			if err != nil {
				return err
			}
			if !sess.LoggedIn() {
				fmt.Fprintln(a.out, "Not logged in.")
				return nil
			}
			fmt.Fprintf(a.out, "%s <%s> (%s)\n", sess.User.Name, sess.User.Email, sess.User.ID)
			return nil
		},
	}
}
