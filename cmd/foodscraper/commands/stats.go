package commands

import (
	"wholefoods-scraper/lib/util/serviceutil"
	"wholefoods-scraper/services/wholefoods"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats <path/to/wholefoods_spider_stats.json>",
	Short: "Prints the run stats written by a crawl.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		stats, err := wholefoods.ReadRunStats(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read run stats", err)
		}
		renderRunStats(stats)
	},
}
