package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var promoteEmail string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

// usersPromoteCmd grants the admin role
var usersPromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Make an existing user an admin",
	Long: `Grant the admin role to the account registered with the given email.
Promoting an admin again is a no-op.

Examples:
  rentalsctl users promote --email owner@bluehavenrentals.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openServices()
		if err != nil {
			return err
		}
		defer rt.Close()

		user, err := rt.services.Users.Promote(cmd.Context(), promoteEmail)
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(user)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", user.Email, user.ID, user.Role)
		return nil
	},
}

func init() {
	usersPromoteCmd.Flags().StringVar(&promoteEmail, "email", "", "Email of the account to promote")
	_ = usersPromoteCmd.MarkFlagRequired("email")

	usersCmd.AddCommand(usersPromoteCmd)
}
