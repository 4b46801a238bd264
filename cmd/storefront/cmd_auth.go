package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/internal/app"
	"github.com/shashiranjanraj/storefront/internal/session"
)

var (
	emailFlag    string
	passwordFlag string
	firstFlag    string
	lastFlag     string
)

// storefront login
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Session.Login(ctx, emailFlag, passwordFlag); err != nil {
				return fmt.Errorf("login failed: %s", api.Message(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", a.Session.User().FullName())
			return nil
		})
	},
}

// storefront logout
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			a.Session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		})
	},
}

// storefront whoami
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			u := a.Session.User()
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", u.FullName(), u.Email, u.Role)
			return nil
		})
	},
}

// storefront register
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			form := session.RegisterForm{
				FirstName: firstFlag, LastName: lastFlag, Email: emailFlag,
				Password: passwordFlag, ConfirmPassword: confirmed(passwordFlag),
			}
			if err := form.Validate(); err != nil {
				return fmt.Errorf("%s", api.Message(err))
			}
			if err := a.Session.Register(ctx, form.Registration()); err != nil {
				return fmt.Errorf("registration failed: %s", api.Message(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created")
			return nil
		})
	},
}

// storefront profile
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update first name, last name or email",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			u := a.Session.User()
			p := api.Profile{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
			if firstFlag != "" {
				p.FirstName = firstFlag
			}
			if lastFlag != "" {
				p.LastName = lastFlag
			}
			if emailFlag != "" {
				p.Email = emailFlag
			}
			if err := a.Session.UpdateProfile(ctx, p); err != nil {
				return fmt.Errorf("profile update failed: %s", api.Message(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated")
			return nil
		})
	},
}

// confirmed returns --confirm, or pw when the flag was not given.
func confirmed(pw string) string {
	if confirmFlag != "" {
		return confirmFlag
	}
	return pw
}

var (
	confirmFlag    string
	currentFlag    string
	newFlag        string
	resetTokenFlag string
)

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change or reset the account password",
}

// storefront password change
var passwordChangeCmd = &cobra.Command{
	Use:   "change",
	Short: "Change the password of the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			form := session.PasswordForm{CurrentPassword: currentFlag, NewPassword: newFlag, ConfirmPassword: confirmed(newFlag)}
			if err := form.Validate(); err != nil {
				return fmt.Errorf("%s", api.Message(err))
			}
			if err := a.Session.UpdatePassword(ctx, form.CurrentPassword, form.NewPassword); err != nil {
				return fmt.Errorf("password change failed: %s", api.Message(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated")
			return nil
		})
	},
}

// storefront password reset
var passwordResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Email a password reset link",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Session.ResetPassword(ctx, emailFlag); err != nil {
				return fmt.Errorf("password reset failed: %s", api.Message(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Check your inbox for a reset link")
			return nil
		})
	},
}

// storefront password complete
var passwordCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Set a new password with the emailed reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			form := session.ResetForm{Token: resetTokenFlag, NewPassword: newFlag}
			if err := form.Validate(); err != nil {
				return fmt.Errorf("%s", api.Message(err))
			}
			if err := a.Session.CompleteReset(ctx, form.Token, form.NewPassword); err != nil {
				return fmt.Errorf("password reset failed: %s", api.Message(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password reset. You can now log in.")
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&emailFlag, "email", "", "account email")
	loginCmd.Flags().StringVar(&passwordFlag, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVar(&firstFlag, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&lastFlag, "last-name", "", "last name")
	registerCmd.Flags().StringVar(&emailFlag, "email", "", "account email")
	registerCmd.Flags().StringVar(&passwordFlag, "password", "", "account password")
	registerCmd.Flags().StringVar(&confirmFlag, "confirm", "", "repeat the password")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")

	profileCmd.Flags().StringVar(&firstFlag, "first-name", "", "new first name")
	profileCmd.Flags().StringVar(&lastFlag, "last-name", "", "new last name")
	profileCmd.Flags().StringVar(&emailFlag, "email", "", "new email")

	passwordChangeCmd.Flags().StringVar(&currentFlag, "current", "", "current password")
	passwordChangeCmd.Flags().StringVar(&newFlag, "new", "", "new password")
	passwordChangeCmd.Flags().StringVar(&confirmFlag, "confirm", "", "repeat the new password")
	_ = passwordChangeCmd.MarkFlagRequired("current")
	_ = passwordChangeCmd.MarkFlagRequired("new")

	passwordResetCmd.Flags().StringVar(&emailFlag, "email", "", "account email")
	_ = passwordResetCmd.MarkFlagRequired("email")

	passwordCompleteCmd.Flags().StringVar(&resetTokenFlag, "token", "", "reset token from the email")
	passwordCompleteCmd.Flags().StringVar(&newFlag, "new", "", "new password")
	_ = passwordCompleteCmd.MarkFlagRequired("token")
	_ = passwordCompleteCmd.MarkFlagRequired("new")

	passwordCmd.AddCommand(passwordChangeCmd, passwordResetCmd, passwordCompleteCmd)
}
