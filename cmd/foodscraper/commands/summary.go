package commands

import (
	"wholefoods-scraper/lib/util/serviceutil"
	"wholefoods-scraper/services/wholefoods"
	"wholefoods-scraper/services/wholefoods/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var summaryDb *string

func init() {
	summaryDb = summaryCmd.Flags().String("db", "", "The sqlite file or libsql url a crawl wrote to, defaults to the configured database.")
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary [--db <path/to/output.db>]",
	Short: "Prints the amount of crawled products per category.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := wholefoods.ReadConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if *summaryDb != "" {
			cfg.Database.File = ""
			cfg.Database.Url = ""
			if isRemoteDb(*summaryDb) {
				cfg.Database.Url = *summaryDb
			} else {
				cfg.Database.File = *summaryDb
			}
		}
		if cfg.Database.Empty() {
			serviceutil.Fatal("no database to summarize", errNoDatabase)
		}

		database, err := cfg.Database.OpenDB()
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		ctx := cmd.Context()
		err = db.Migrate(ctx, database)
		if err != nil {
			serviceutil.Fatal("failed to migrate db", err)
		}
		qry := db.New(database)

		stores, err := qry.CountStores(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count stores", err)
		}
		products, err := qry.CountProducts(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count products", err)
		}
		perCategory, err := qry.ProductsPerCategory(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count products per category", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Category", "Products"})
		for _, row := range perCategory {
			category := row.Category
			if category == "" {
				category = "(none)"
			}
			t.AppendRow(table.Row{category, row.Count})
		}
		t.AppendFooter(table.Row{"Total", products})
		t.SetCaption("%d stores", stores)
		t.Render()
	},
}
