package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/sakif/pinboard/cmd/pinctl/output"
	"github.com/sakif/pinboard/internal/client"
)

var (
	// Account flags
	username    string
	password    string
	email       string
	profileInfo string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogin(cmd.Context())
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRegister(cmd.Context())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.client.Logout(cmd.Context()); err != nil {
			return err
		}
		output.Success("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}
		me, err := a.client.Me(cmd.Context())
		if err != nil {
			return err
		}
		if ok, err := printJSON(me); ok {
			return err
		}
		output.Info("%s (%s)", me.Username, me.ID)
		if me.Email != "" {
			output.Muted("  %s", me.Email)
		}
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Edit your email or profile text",
	Long: `Edit your email or profile text. Only the flags you pass are changed.

Examples:
  pinctl profile --info "I pin mountains"
  pinctl profile --email me@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var update client.ProfileUpdate
		if cmd.Flags().Changed("email") {
			update.Email = &email
		}
		if cmd.Flags().Changed("info") {
			update.ProfileInfo = &profileInfo
		}
		if update.Email == nil && update.ProfileInfo == nil {
			return errors.New("nothing to change, pass --email or --info")
		}
		return runProfile(cmd.Context(), update)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, profileCmd)

	for _, cmd := range []*cobra.Command{loginCmd, registerCmd} {
		cmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
		cmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
		_ = cmd.MarkFlagRequired("username")
		_ = cmd.MarkFlagRequired("password")
	}
	registerCmd.Flags().StringVar(&email, "email", "", "Email address")
	registerCmd.Flags().StringVar(&profileInfo, "profile", "", "Short profile text")

	profileCmd.Flags().StringVar(&email, "email", "", "New email address")
	profileCmd.Flags().StringVar(&profileInfo, "info", "", "New profile text")
}

func runLogin(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	user, err := a.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	output.Success("Logged in as %s", user.Username)
	return nil
}

func runRegister(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	user, err := a.client.Register(ctx, client.RegisterRequest{
		Username:    username,
		Email:       email,
		Password:    password,
		ProfileInfo: profileInfo,
	})
	if err != nil {
		return err
	}
	output.Success("Welcome, %s", user.Username)
	return nil
}

func runProfile(ctx context.Context, update client.ProfileUpdate) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	me, err := a.client.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	if ok, err := printJSON(me); ok {
		return err
	}
	output.Success("Profile updated")
	if me.Email != "" {
		output.Muted("  %s", me.Email)
	}
	if me.ProfileInfo != "" {
		output.Muted("  %s", me.ProfileInfo)
	}
	return nil
}
