// Package scrapeops adapts crawler requests to the ScrapeOps proxy aggregator and
// its fake browser header service.
package scrapeops

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"wholefoods-scraper/lib/crawler"
)

const (
	DefaultProxyEndpoint = "https://proxy.scrapeops.io/v1/"
	// FinalURLHeader is set by the proxy to the url the proxied response came from.
	FinalURLHeader = "Sops-Final-Url"
)

type ProxyOptions struct {
	APIKey   string
	Endpoint string
	Enabled  bool
	// Country is used for requests that don't specify a country themselves
	Country string
}

type Proxy struct {
	opts ProxyOptions
}

func NewProxy(opts ProxyOptions) Proxy {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultProxyEndpoint
	}
	return Proxy{opts: opts}
}

// Enabled reports whether requests are routed through the proxy, this requires
// both an api key and the proxy to be switched on.
func (p Proxy) Enabled() bool {
	return strings.TrimSpace(p.opts.APIKey) != "" && p.opts.Enabled
}

func (p Proxy) isProxied(link string) bool {
	return strings.HasPrefix(link, p.opts.Endpoint)
}

// URL returns the proxy url that fetches `req` with its flags applied.
func (p Proxy) URL(req *crawler.Request) string {
	payload := url.Values{}
	payload.Set("api_key", p.opts.APIKey)
	payload.Set("url", req.URL)
	if req.Flags.RenderJS {
		payload.Set("render_js", "true")
	}
	if req.Flags.WaitFor > 0 {
		payload.Set("wait", strconv.Itoa(req.Flags.WaitFor*1000))
	}
	if req.Flags.Residential {
		payload.Set("residential", "true")
	}
	if req.Flags.KeepHeaders {
		payload.Set("keep_headers", "true")
	}
	country := req.Flags.Country
	if country == "" {
		country = p.opts.Country
	}
	if country != "" {
		payload.Set("country", country)
	}

	sep := "?"
	if strings.Contains(p.opts.Endpoint, "?") {
		sep = "&"
	}
	return p.opts.Endpoint + sep + payload.Encode()
}

func (p Proxy) Middleware() crawler.Middleware {
	return func(ctx context.Context, req *crawler.Request) error {
		if !p.Enabled() || p.isProxied(req.URL) {
			return nil
		}
		req.URL = p.URL(req)
		return nil
	}
}

// FinalURL returns the url a proxied response was actually served from.
func (p Proxy) FinalURL(res *crawler.Response) string {
	if real := res.Header.Get(FinalURLHeader); real != "" {
		return real
	}
	return res.URL
}
