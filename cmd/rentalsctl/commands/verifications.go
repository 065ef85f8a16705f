package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var verificationsCmd = &cobra.Command{
	Use:   "verifications",
	Short: "Maintain email verification codes",
}

// verificationsCleanupCmd deletes expired codes
var verificationsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired verification codes",
	Long: `Delete every verification code whose expiry has passed. The API server
runs the same cleanup on QUEUE_CLEANUP_SCHEDULE.

Examples:
  rentalsctl verifications cleanup
  rentalsctl verifications cleanup --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openServices()
		if err != nil {
			return err
		}
		defer rt.Close()

		deleted, err := rt.services.Verifications.CleanupExpired(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]int64{"deleted": deleted})
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d expired verification codes deleted\n", deleted)
		return nil
	},
}

func init() {
	verificationsCmd.AddCommand(verificationsCleanupCmd)
}
