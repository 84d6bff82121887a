package wholefoods

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"wholefoods-scraper/lib/crawler"
)

type CrawlOptions struct {
	Config      Config
	Fetcher     crawler.Fetcher
	Middlewares []crawler.Middleware
	// Pipeline receives every StoreRecord and ProductRecord, it may be nil
	Pipeline  crawler.Pipeline
	Artifacts ArtifactOutput
}

type CrawlResult struct {
	Stats     RunStats
	StatsPath string
	Engine    crawler.Stats
}

// Crawl runs the spider to completion and writes the run stats artifact into
// the configured output directory.
func Crawl(ctx context.Context, opts CrawlOptions) (CrawlResult, error) {
	cfg := opts.Config
	spider := NewSpider(SpiderOptions{
		StoreIDs:   cfg.StoreIDs,
		Categories: cfg.Categories,
		Dispatcher: NewDispatcher(cfg),
		Artifacts:  opts.Artifacts,
	})

	engine := crawler.New(crawler.Options{
		MaxConcurrent: cfg.HTTP.MaxConcurrent,
		MaxPerHost:    cfg.HTTP.MaxPerHost,
		Delay:         cfg.HTTP.Delay(),
		Fetcher:       opts.Fetcher,
		Middlewares:   opts.Middlewares,
		Pipeline:      opts.Pipeline,
	})

	reporter := NewReporter(spider.Name(), cfg.StoreIDs, cfg.Categories)
	reporter.Start(time.Now())

	runErr := engine.Run(ctx, spider)
	if pending := spider.State().Pending(); pending > 0 {
		slog.Warn("product details were never requested, no build token was found", "pending", pending)
	}

	stats, err := reporter.Finish(time.Now(), engine.Stats())
	if err != nil {
		return CrawlResult{}, err
	}
	result := CrawlResult{Stats: stats, Engine: engine.Stats()}

	path, err := reporter.Write(cfg.OutputDir)
	if err != nil {
		return result, err
	}
	result.StatsPath = path

	if runErr != nil {
		return result, fmt.Errorf("crawl: %w", runErr)
	}
	return result, nil
}
