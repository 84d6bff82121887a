package scrapeops

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
	"wholefoods-scraper/lib/crawler"
	"wholefoods-scraper/lib/restyutil"

	"github.com/go-resty/resty/v2"
)

const DefaultHeadersEndpoint = "http://headers.scrapeops.io/v1/browser-headers"

type HeaderOptions struct {
	APIKey   string
	Endpoint string
	Enabled  bool
	// number of distinct header sets to fetch
	NumResults int
}

// HeaderInjector sets one of a pool of realistic browser header sets on each request.
type HeaderInjector struct {
	endpoint string
	headers  []map[string]string
}

type headersResponse struct {
	Result []map[string]string `json:"result"`
}

// NewHeaderInjector fetches the header pool once, if the fetch fails or the service is
// disabled the injector is returned empty and its middleware does nothing.
func NewHeaderInjector(ctx context.Context, opts HeaderOptions) *HeaderInjector {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultHeadersEndpoint
	}
	h := &HeaderInjector{endpoint: opts.Endpoint}
	if !opts.Enabled || strings.TrimSpace(opts.APIKey) == "" {
		slog.Info("fake browser headers disabled")
		return h
	}

	headers, err := fetchHeaders(ctx, opts)
	if err != nil {
		slog.Error("failed to fetch fake browser headers", "err", err)
		return h
	}
	h.headers = headers
	slog.Info("fetched fake browser headers", "count", len(headers))
	return h
}

func NewStaticHeaderInjector(headers []map[string]string) *HeaderInjector {
	return &HeaderInjector{endpoint: DefaultHeadersEndpoint, headers: headers}
}

func fetchHeaders(ctx context.Context, opts HeaderOptions) ([]map[string]string, error) {
	client := resty.New().SetTimeout(time.Second * 15)

	params := map[string]string{"api_key": opts.APIKey}
	if opts.NumResults > 0 {
		params["num_results"] = strconv.Itoa(opts.NumResults)
	}

	var out headersResponse
	res, err := client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&out).
		Get(opts.Endpoint)
	if err != nil {
		return nil, restyutil.RedactError(err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("headers endpoint returned %s", res.Status())
	}
	return out.Result, nil
}

func (h *HeaderInjector) Len() int {
	return len(h.headers)
}

func (h *HeaderInjector) random() map[string]string {
	if len(h.headers) == 0 {
		return nil
	}
	return h.headers[rand.IntN(len(h.headers))]
}

func (h *HeaderInjector) Middleware() crawler.Middleware {
	return func(ctx context.Context, req *crawler.Request) error {
		if len(h.headers) == 0 || req.Flags.SkipHeaders || strings.HasPrefix(req.URL, h.endpoint) {
			return nil
		}
		for key, value := range h.random() {
			req.Header.Set(key, value)
		}
		return nil
	}
}
