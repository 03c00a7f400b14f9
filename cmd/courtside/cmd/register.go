package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
)

var (
	registerEmail       string
	registerPassword    string
	registerFullName    string
	registerDisplayName string
	registerPhone       string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE:  runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "account password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerFullName, "name", "", "full name")
	registerCmd.Flags().StringVar(&registerDisplayName, "display-name", "", "display name shown to other players")
	registerCmd.Flags().StringVar(&registerPhone, "phone", "", "phone number")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	email := registerEmail
	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	fullName := registerFullName
	if fullName == "" {
		if fullName, err = promptLine("Full name: "); err != nil {
			return err
		}
	}
	password := registerPassword
	if password == "" {
		if password, err = promptPassword("Password: "); err != nil {
			return err
		}
	}

	// Registration only creates the account; the grant comes from a
	// follow-up login, as the web client does it.
	user, err := a.client.Register(ctx, rest.RegisterRequest{
		Email:       email,
		Password:    password,
		FullName:    fullName,
		DisplayName: registerDisplayName,
		Phone:       registerPhone,
	})
	if err != nil {
		return err
	}
	tokens, err := a.client.Login(ctx, rest.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	a.creds.Login(tokens.AccessToken, tokens.RefreshToken, user)

	fmt.Printf("Welcome, %s! You are now logged in.\n", user.FullName)
	return nil
}
