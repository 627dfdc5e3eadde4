package cli

import (
	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Account and session operations",
	}

	cmd.AddCommand(newAuthGuestCmd())
	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthMeCmd())

	return cmd
}

func newAuthGuestCmd() *cobra.Command {
	var avatar string

	cmd := &cobra.Command{
		Use:   "guest <username>",
		Short: "Create a guest account and save its session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			var result AuthResult
			body := map[string]string{"username": args[0], "avatar": avatar}
			if err := client.Post("/api/v1/auth/guest", body, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar identifier")

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var avatar string

	cmd := &cobra.Command{
		Use:   "register <username> <password>",
		Short: "Register an account and save its session token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			var result AuthResult
			body := map[string]string{"username": args[0], "password": args[1], "avatar": avatar}
			if err := client.Post("/api/v1/auth/register", body, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar identifier")

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in and save the session token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			var result AuthResult
			body := map[string]string{"username": args[0], "password": args[1]}
			if err := client.Post("/api/v1/auth/login", body, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := client.Post("/api/v1/auth/logout", nil, nil); err != nil {
				return err
			}

			out.PrintMessage("Logged out")
			return nil
		},
	}
}

func newAuthMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			var result User
			if err := client.Get("/api/v1/auth/me", &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}
