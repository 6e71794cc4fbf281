package commands

import (
	"bookbridge/internal/components/telemetry"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	app *App
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "bookbridge.json5", "The config file, looked up from the working directory upwards.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr.")
}

var rootCmd = &cobra.Command{
	Use:          "bookbridge",
	Short:        "bookbridge searches an online book catalog and delivers books to a kindle.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		config, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		app = NewApp(config, telemetry.SlogAPI{})
		return nil
	},
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
