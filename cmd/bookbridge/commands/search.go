package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchPage int

func init() {
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "The page of results to show, starting from 1.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query...> [--page n]",
	Short: "Search the catalog for books and sequences.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := app.Retrieval()
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		page, err := service.Start(cmd.Context(), query)
		if err != nil {
			return err
		}
		if searchPage > 1 && page.TotalItems > 0 {
			page, err = service.Page(cmd.Context(), page.SessionId, searchPage-1)
			if err != nil {
				return err
			}
		}

		renderPage(cmd.OutOrStdout(), page)
		return nil
	},
}
