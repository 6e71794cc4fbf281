package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	emailCmd.AddCommand(emailSetCmd)
	emailCmd.AddCommand(emailGetCmd)
	rootCmd.AddCommand(emailCmd)
}

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Manage the kindle addresses saved for users.",
}

var emailSetCmd = &cobra.Command{
	Use:   "set <user> <email>",
	Short: "Save the kindle address of a user.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := app.Users(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		err = store.SetKindleEmail(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved kindle address for %s.\n", args[0])
		return nil
	},
}

var emailGetCmd = &cobra.Command{
	Use:   "get <user>",
	Short: "Show the kindle address of a user.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := app.Users(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		email, ok, err := store.KindleEmail(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %q has no kindle address", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), email)
		return nil
	},
}
