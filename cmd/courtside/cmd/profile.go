package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
	"github.com/courtside-hq/courtside/internal/domain/auth"
)

var (
	profileDisplayName string
	profileFullName    string
	profileEmail       string
	profilePhone       string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the logged-in player's profile",
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	RunE:  runProfileUpdate,
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileDisplayName, "display-name", "", "display name")
	profileUpdateCmd.Flags().StringVar(&profileFullName, "name", "", "full name")
	profileUpdateCmd.Flags().StringVar(&profileEmail, "email", "", "email")
	profileUpdateCmd.Flags().StringVar(&profilePhone, "phone", "", "phone number")
	profileCmd.AddCommand(profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}

	user, err := a.client.Me(cmd.Context())
	if err != nil {
		return err
	}
	a.creds.SetUser(user)

	printUser(user)
	return nil
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}

	req := rest.UpdateProfileRequest{
		DisplayName: profileDisplayName,
		FullName:    profileFullName,
		Email:       profileEmail,
		Phone:       profilePhone,
	}
	if req == (rest.UpdateProfileRequest{}) {
		return fmt.Errorf("nothing to update, pass at least one flag")
	}

	user, err := a.client.UpdateProfile(cmd.Context(), req)
	if err != nil {
		return err
	}
	a.creds.SetUser(user)

	fmt.Println("Profile updated.")
	printUser(user)
	return nil
}

func printUser(u *auth.User) {
	name := u.FullName
	if u.DisplayName != "" {
		name = fmt.Sprintf("%s (%s)", u.DisplayName, u.FullName)
	}
	fmt.Printf("%s\n", name)
	fmt.Printf("  Email:   %s\n", u.Email)
	if u.Phone != "" {
		fmt.Printf("  Phone:   %s\n", u.Phone)
	}
	fmt.Printf("  Rating:  %.0f\n", u.Rating)
	fmt.Printf("  Matches: %d (%d won, %d lost)\n", u.TotalMatches, u.Wins, u.Losses)
}
