package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"wholefoods-scraper/lib/crawler"
	"wholefoods-scraper/lib/restyutil"
	"wholefoods-scraper/lib/scrapeops"
	"wholefoods-scraper/lib/telemetry"
	"wholefoods-scraper/lib/util/serviceutil"
	"wholefoods-scraper/services/wholefoods"
	"wholefoods-scraper/services/wholefoods/feed"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/spf13/cobra"
)

var crawlDb *string
var crawlOut *string
var crawlStores *[]string
var crawlCategories *[]string
var crawlLimit *int

func init() {
	crawlDb = crawlCmd.Flags().String("db", "", "A sqlite file or libsql url to write crawl results to.")
	crawlOut = crawlCmd.Flags().String("out", "", "The directory feeds and run stats are written to.")
	crawlStores = crawlCmd.Flags().StringSlice("store", nil, "A store id to crawl, can be repeated.")
	crawlCategories = crawlCmd.Flags().StringSlice("category", nil, "A category slug to crawl, can be repeated.")
	crawlLimit = crawlCmd.Flags().Int("limit", 0, "The page size of category listings.")
	rootCmd.AddCommand(crawlCmd)
}

func isRemoteDb(target string) bool {
	for _, scheme := range []string{"libsql://", "https://", "http://", "wss://", "ws://"} {
		if strings.HasPrefix(target, scheme) {
			return true
		}
	}
	return false
}

func crawlConfig() wholefoods.Config {
	cfg, err := wholefoods.ReadConfig(configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	if *crawlDb != "" {
		cfg.Database.File = ""
		cfg.Database.Url = ""
		if isRemoteDb(*crawlDb) {
			cfg.Database.Url = *crawlDb
		} else {
			cfg.Database.File = *crawlDb
		}
	}
	if *crawlOut != "" {
		cfg.OutputDir = *crawlOut
	}
	if len(*crawlStores) > 0 {
		cfg.StoreIDs = *crawlStores
	}
	if len(*crawlCategories) > 0 {
		cfg.Categories = *crawlCategories
	}
	if *crawlLimit > 0 {
		cfg.Limit = *crawlLimit
	}

	cfg.ApplyDefaults()
	return cfg
}

func openSink(ctx context.Context, cfg wholefoods.Config) (*feed.DBSink, func()) {
	if cfg.Database.Empty() {
		return nil, func() {}
	}
	database, err := cfg.Database.OpenDB()
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	sink, err := feed.NewDBSink(ctx, database)
	if err != nil {
		database.Close()
		serviceutil.Fatal("failed to migrate db", err)
	}
	return sink, func() { database.Close() }
}

func newFetcher(cfg wholefoods.Config, debug restyutil.InstrumentOutput) crawler.Fetcher {
	opts := crawler.RestyOptions{
		Timeout:        cfg.HTTP.Timeout(),
		Retries:        cfg.HTTP.Retries,
		DebugOutput:    debug,
		FinalURLHeader: scrapeops.FinalURLHeader,
	}
	if cfg.HTTP.Cloudflare {
		opts.WrapTransport = func(rt http.RoundTripper) http.RoundTripper {
			return cloudflarebp.AddCloudFlareByPass(rt)
		}
	}
	return crawler.NewRestyFetcher(opts)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [--db <path/to/output.db>] [--out <dir>] [--store <id>...] [--category <slug>...] [--limit <n>]",
	Short: "Crawls the configured stores and writes store and product feeds.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := crawlConfig()
		telemetry.InstrumentPerfStats(ctx, time.Second*15)

		debug, err := restyutil.NewFilesystemOutput(cfg.DebugDir)
		if err != nil {
			serviceutil.Fatal("failed to create debug directory", err)
		}

		sink, closeDb := openSink(ctx, cfg)
		defer closeDb()
		router, err := feed.OpenRouter(cfg.OutputDir, sink)
		if err != nil {
			serviceutil.Fatal("failed to open feeds", err)
		}

		proxy := scrapeops.NewProxy(scrapeops.ProxyOptions{
			APIKey:   cfg.ScrapeOps.APIKey,
			Endpoint: cfg.ScrapeOps.ProxyEndpoint,
			Enabled:  cfg.ScrapeOps.ProxyEnabled,
			Country:  cfg.Country,
		})
		if !proxy.Enabled() {
			slog.Warn("scrapeops proxy is disabled, requests go to the storefront directly")
		}
		headers := scrapeops.NewHeaderInjector(ctx, scrapeops.HeaderOptions{
			APIKey:     cfg.ScrapeOps.APIKey,
			Endpoint:   cfg.ScrapeOps.HeadersEndpoint,
			Enabled:    cfg.ScrapeOps.HeadersEnabled,
			NumResults: cfg.ScrapeOps.NumHeaders,
		})

		result, crawlErr := wholefoods.Crawl(ctx, wholefoods.CrawlOptions{
			Config:  cfg,
			Fetcher: newFetcher(cfg, debug),
			// header injection sees the storefront url, the proxy rewrites it afterwards
			Middlewares: []crawler.Middleware{
				headers.Middleware(),
				proxy.Middleware(),
			},
			Pipeline:  router,
			Artifacts: debug,
		})

		err = router.Close()
		if err != nil {
			serviceutil.Fatal("failed to write feeds", err)
		}
		if crawlErr != nil {
			if !errors.Is(crawlErr, context.Canceled) || result.StatsPath == "" {
				serviceutil.Fatal("crawl failed", crawlErr)
			}
			slog.Warn("crawl was interrupted, feeds contain a partial crawl")
		}

		stores, products := router.Counts()
		slog.Info("crawl complete", "stores", stores, "products", products, "stats", result.StatsPath)
		renderRunStats(result.Stats)
	},
}
