// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/holomush/shoplist/internal/auth"
)

// NewRegisterCmd creates the register command.
func NewRegisterCmd(deps *Deps) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user account",
		Long: `Create a user account. The username is 3 to 20 letters, digits or
underscores; the password is at least 8 characters and is asked twice.
With --password-stdin the first line of stdin is used for both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, deps, "register", func(ctx context.Context, a *app) error {
				username, err := a.username(creds)
				if err != nil {
					return err
				}
				password, err := a.password(creds, "Password: ")
				if err != nil {
					return err
				}
				confirm := password
				if !creds.passwordStdin {
					if confirm, err = a.prompt.Password("Confirm password: "); err != nil {
						return err
					}
				}

				st, err := a.open(ctx)
				if err != nil {
					return err
				}
				svc, err := auth.NewRegistrationService(st.Users(), deps.Hasher, a.logger)
				if err != nil {
					return err
				}
				user, err := svc.Register(ctx, username, password, confirm)
				if err != nil {
					return err
				}
				cmd.Printf("Registered %s\n", user.Username)
				return nil
			})
		},
	}
	addCredentialFlags(cmd.Flags(), &creds)
	return cmd
}

// NewLoginCmd creates the login command. It checks the credentials and the
// second factor and reports the outcome; nothing is remembered afterwards.
func NewLoginCmd(deps *Deps) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check a username, password and 2FA code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, deps, "login", func(ctx context.Context, a *app) error {
				id, out, err := a.signIn(ctx, cmd, creds)
				if err != nil {
					return err
				}
				cmd.Println(out.Message)
				cmd.Printf("Logged in as %s\n", id.Username)
				return nil
			})
		},
	}
	addCredentialFlags(cmd.Flags(), &creds)
	return cmd
}

// NewUserCmd creates the user command for account settings.
func NewUserCmd(deps *Deps) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage your account",
	}
	addCredentialFlags(cmd.PersistentFlags(), &creds)

	var useTOTP bool
	enable := &cobra.Command{
		Use:   "enable-2fa",
		Short: "Turn on the second factor",
		Long: `Turn on the second factor. By default a random 6-digit code is
generated and must be entered at every login. With --totp an
authenticator app secret is generated instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, deps, "user-enable-2fa", func(ctx context.Context, a *app) error {
				id, _, err := a.signIn(ctx, cmd, creds)
				if err != nil {
					return err
				}
				svc, err := a.authService(ctx)
				if err != nil {
					return err
				}
				mode := auth.TwoFactorStatic
				if useTOTP {
					mode = auth.TwoFactorTOTP
				}
				setup, err := svc.EnableTwoFactor(ctx, id.ID, mode)
				if err != nil {
					return err
				}
				if mode == auth.TwoFactorTOTP {
					cmd.Printf("Secret: %s\n", setup.Secret)
					cmd.Printf("URL: %s\n", setup.URL)
				} else {
					cmd.Printf("Your 2FA code: %s\n", setup.Code)
				}
				return nil
			})
		},
	}
	enable.Flags().BoolVar(&useTOTP, "totp", false, "use an authenticator app (RFC 6238) instead of a fixed code")

	disable := &cobra.Command{
		Use:   "disable-2fa",
		Short: "Turn off the second factor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, deps, "user-disable-2fa", func(ctx context.Context, a *app) error {
				id, _, err := a.signIn(ctx, cmd, creds)
				if err != nil {
					return err
				}
				svc, err := a.authService(ctx)
				if err != nil {
					return err
				}
				if err := svc.DisableTwoFactor(ctx, id.ID); err != nil {
					return err
				}
				cmd.Println("Two-factor authentication disabled")
				return nil
			})
		},
	}

	cmd.AddCommand(enable, disable)
	return cmd
}
