package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(sequenceCmd)
}

func parseId(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q, expected a positive integer", arg)
	}
	return id, nil
}

var infoCmd = &cobra.Command{
	Use:   "info <book id>",
	Short: "Show the details of a book.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		service, err := app.Retrieval()
		if err != nil {
			return err
		}

		info, err := service.Detail(cmd.Context(), id)
		if err != nil {
			return err
		}
		renderDetail(cmd.OutOrStdout(), info)
		return nil
	},
}

var sequenceCmd = &cobra.Command{
	Use:   "sequence <sequence id>",
	Short: "List the books of a sequence.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		service, err := app.Retrieval()
		if err != nil {
			return err
		}

		books, err := service.SequenceMembers(cmd.Context(), id)
		if err != nil {
			return err
		}
		renderBooks(cmd.OutOrStdout(), books)
		return nil
	},
}
