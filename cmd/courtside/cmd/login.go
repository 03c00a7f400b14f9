package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/oauth"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
)

var (
	loginEmail    string
	loginPassword string
	loginProvider string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password, or an identity provider",
	Long: `Log in to the courtside service.

With no flags, prompts for email and password. With --provider line,
prints the provider login URL: open it in a browser, finish the login,
and paste the redirect URL (or the code) back here.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginProvider, "provider", "", "identity provider (line)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if loginProvider != "" {
		if loginProvider != "line" {
			return fmt.Errorf("unknown provider %q, only line is supported", loginProvider)
		}
		flow := oauth.NewFlow(a.client, a.store, a.creds, a.logger)
		loginURL, err := flow.Begin(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Open this URL in a browser and log in:")
		fmt.Println()
		fmt.Println("  " + loginURL)
		fmt.Println()
		pasted, err := promptLine("Paste the redirect URL (or code): ")
		if err != nil {
			return err
		}
		user, err := flow.Complete(ctx, pasted)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", user.FullName, user.Email)
		return nil
	}

	email := loginEmail
	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		if password, err = promptPassword("Password: "); err != nil {
			return err
		}
	}

	tokens, err := a.client.Login(ctx, rest.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	user, err := a.client.MeWithToken(ctx, tokens.AccessToken)
	if err != nil {
		return err
	}
	a.creds.Login(tokens.AccessToken, tokens.RefreshToken, user)

	fmt.Printf("Logged in as %s (%s)\n", user.FullName, user.Email)
	return nil
}

func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// Piped input: fall back to a plain line read.
		return promptLine("")
	}
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}
