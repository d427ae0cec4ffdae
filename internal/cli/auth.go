package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/validate"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session in the keyring",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when empty)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when empty)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	if loginUsername == "" || loginPassword == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Username").
					Value(&loginUsername).
					Validate(validate.Func(validate.Username)),
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&loginPassword).
					Validate(validate.Func(validate.Password)),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	}

	e, err := setup(contextOf(cmd))
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(contextOf(cmd), e.cfg.Server.Timeout())
	defer cancel()

	user, err := e.session.Login(ctx, loginUsername, loginPassword)
	if err != nil {
		if msg := api.ServerMessage(err); msg != "" {
			return errors.New(msg)
		}
		return fmt.Errorf("logging in to %s: %w", e.cfg.Server.BaseURL, err)
	}

	role := "member"
	if user.IsAdmin {
		role = "admin"
	}
	fmt.Printf("Logged in as %s (%s of team %s)\n", user.Username, role, user.TeamID)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	e, err := setup(contextOf(cmd))
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.session.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}
