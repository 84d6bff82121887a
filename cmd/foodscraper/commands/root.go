package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"wholefoods-scraper/lib/telemetry"

	"github.com/spf13/cobra"
)

var configPath string
var verbose bool

var tel telemetry.Telemetry

var rootCmd = &cobra.Command{
	Use:   "foodscraper",
	Short: "foodscraper crawls the Whole Foods Market storefront for store and product data.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
		tel = telemetry.SetupOptional(cmd.Context(), "foodscraper")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "foodscraper.json5", "The config file to read.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging and http dumps.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
