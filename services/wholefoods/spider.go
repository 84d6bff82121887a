package wholefoods

import (
	"context"
	"log/slog"
	"wholefoods-scraper/lib/crawler"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/wholefoods")

const SpiderName = "wholefoods"

// ArtifactOutput receives raw bodies that failed to parse.
type ArtifactOutput interface {
	Write(id string, contents string)
}

type SpiderOptions struct {
	StoreIDs   []string
	Categories []string
	Dispatcher Dispatcher
	// Artifacts may be nil, in which case failed bodies are only logged
	Artifacts ArtifactOutput
}

// Spider crawls store summaries, category listings and product details of
// the configured stores.
type Spider struct {
	opts  SpiderOptions
	state *CrawlState
}

func NewSpider(opts SpiderOptions) *Spider {
	opts.StoreIDs = uniqueIDs(opts.StoreIDs)
	return &Spider{
		opts:  opts,
		state: NewCrawlState(),
	}
}

func (s *Spider) Name() string {
	return SpiderName
}

func (s *Spider) State() *CrawlState {
	return s.state
}

// StartingRequests issues the homepage request alongside every store summary so
// store and listing records are still produced when no build token is found.
func (s *Spider) StartingRequests(ctx context.Context) []*crawler.Request {
	s.state = NewCrawlState()
	slog.Info(
		"starting crawl",
		"store_ids", s.opts.StoreIDs,
		"categories", s.opts.Categories,
		"limit", s.opts.Dispatcher.Limit,
	)

	requests := []*crawler.Request{s.opts.Dispatcher.Homepage()}
	for _, storeID := range s.opts.StoreIDs {
		requests = append(requests, s.opts.Dispatcher.StoreSummary(storeID))
	}
	return requests
}

func (s *Spider) HandleResponse(ctx context.Context, res *crawler.Response) crawler.Result {
	kind := res.Request.Kind
	ctx, span := tracer.Start(ctx, "wholefoods:"+kind)
	defer span.End()
	span.SetAttributes(
		attribute.String("url", res.Request.URL),
		attribute.Int("status", res.StatusCode),
	)

	var result crawler.Result
	switch kind {
	case KindHomepage:
		result = s.handleHomepage(ctx, s.state, res)
	case KindStoreSummary:
		result = s.handleStoreSummary(ctx, res)
	case KindListing:
		result = s.handleListing(ctx, s.state, res)
	case KindProductDetail:
		result = s.handleProductDetail(ctx, res)
	default:
		slog.Error("response of unknown kind", "kind", kind, "url", res.Request.URL)
		result = crawler.Skip("unknown kind")
	}

	span.SetAttributes(
		attribute.Int("items", len(result.Items)),
		attribute.Int("requests", len(result.Requests)),
		attribute.Bool("skipped", result.Skipped),
	)
	return result
}

func (s *Spider) HandleError(ctx context.Context, req *crawler.Request, err error) {
	slog.Error("request failed", "kind", req.Kind, "url", req.URL, "err", err)
}

func (s *Spider) saveArtifact(name string, body []byte) {
	if s.opts.Artifacts == nil {
		return
	}
	s.opts.Artifacts.Write(name, string(body))
	slog.Info("saved failed response", "artifact", name)
}
