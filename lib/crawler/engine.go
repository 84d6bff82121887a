package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/crawler")

type Options struct {
	// maximum amount of requests in flight, defaults to 16
	MaxConcurrent int
	// maximum amount of requests in flight to a single host, defaults to MaxConcurrent
	MaxPerHost int
	// minimum time between two requests to the same host
	Delay time.Duration

	Fetcher     Fetcher
	Middlewares []Middleware
	// Pipeline receives every item handlers emit, it may be nil
	Pipeline Pipeline
}

type Engine struct {
	opts  Options
	queue requestQueue
	seen  map[string]struct{}
	hosts *hostLimits
	stats *statsCollector
}

func New(opts Options) *Engine {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 16
	}
	if opts.MaxPerHost <= 0 {
		opts.MaxPerHost = opts.MaxConcurrent
	}
	return &Engine{
		opts:  opts,
		seen:  map[string]struct{}{},
		hosts: newHostLimits(opts.MaxPerHost, opts.Delay),
		stats: newStatsCollector(),
	}
}

func (e *Engine) Stats() Stats {
	return e.stats.snapshot()
}

type fetchResult struct {
	req *Request
	res *Response
	err error
}

var ErrNoFetcher = errors.New("crawler: no fetcher configured")

// Run crawls until there are no pending or in-flight requests left, or ctx is done.
// Run must not be called concurrently on the same Engine.
func (e *Engine) Run(ctx context.Context, spider Spider) error {
	if e.opts.Fetcher == nil {
		return ErrNoFetcher
	}

	ctx, span := tracer.Start(ctx, "crawler:Run")
	defer span.End()
	span.SetAttributes(attribute.String("spider", spider.Name()))

	e.stats.spider = spider.Name()
	log := slog.With("spider", spider.Name())

	for _, req := range spider.StartingRequests(ctx) {
		e.schedule(req)
	}

	// buffered so in-flight fetches never block on send once Run has returned
	results := make(chan fetchResult, e.opts.MaxConcurrent)
	inflight := 0

	for {
		for inflight < e.opts.MaxConcurrent && e.queue.Len() > 0 {
			req := e.queue.pop()
			inflight++
			e.stats.request(ctx)
			go func() {
				res, err := e.fetch(ctx, req)
				results <- fetchResult{req: req, res: res, err: err}
			}()
		}
		if inflight == 0 {
			break
		}

		select {
		case r := <-results:
			inflight--
			e.handle(ctx, spider, r)
		case <-ctx.Done():
			log.Warn("crawl cancelled", "in_flight", inflight, "pending", e.queue.Len())
			span.SetStatus(codes.Error, "cancelled")
			return ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "cancelled")
		return err
	}

	stats := e.stats.snapshot()
	log.Info(
		"crawl finished",
		"requests", stats.RequestCount,
		"responses", stats.ResponseCount,
		"items", stats.ItemCount,
		"errors", stats.ErrorCount,
	)
	return nil
}

func (e *Engine) schedule(req *Request) bool {
	if req == nil {
		return false
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if !req.DontFilter {
		fp := req.Fingerprint()
		if _, ok := e.seen[fp]; ok {
			e.stats.duplicate()
			slog.Debug("filtered duplicate request", "url", req.URL)
			return false
		}
		e.seen[fp] = struct{}{}
	}
	e.queue.push(req)
	return true
}

func (e *Engine) fetch(ctx context.Context, req *Request) (*Response, error) {
	wire := req.Clone()
	for _, mw := range e.opts.Middlewares {
		err := mw(ctx, wire)
		if err != nil {
			return nil, err
		}
	}

	release, err := e.hosts.acquire(ctx, wire.Host())
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := e.opts.Fetcher.Fetch(ctx, wire)
	if err != nil {
		return nil, err
	}
	res.Request = req
	if res.URL == "" {
		res.URL = req.URL
	}
	return res, nil
}

func (e *Engine) handle(ctx context.Context, spider Spider, r fetchResult) {
	if r.err != nil {
		e.stats.fetchError()
		spider.HandleError(ctx, r.req, r.err)
		return
	}

	e.stats.response(ctx, r.res.StatusCode)
	if r.res.StatusCode < 200 || r.res.StatusCode >= 300 {
		e.stats.fetchError()
		spider.HandleError(ctx, r.req, HTTPError{StatusCode: r.res.StatusCode, URL: r.req.URL})
		return
	}

	result := spider.HandleResponse(ctx, r.res)
	if result.Skipped {
		slog.Debug("response skipped", "kind", r.req.Kind, "url", r.req.URL, "reason", result.Reason)
	}

	for _, item := range result.Items {
		if e.opts.Pipeline != nil {
			err := e.opts.Pipeline.Process(ctx, item)
			if err != nil {
				e.stats.pipelineError()
				slog.Error("pipeline failed to process item", "kind", r.req.Kind, "err", err)
				continue
			}
		}
		e.stats.item(ctx)
	}
	for _, req := range result.Requests {
		e.schedule(req)
	}
}
