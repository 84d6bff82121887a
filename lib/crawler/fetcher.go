package crawler

import (
	"context"
	"net/http"
	"time"
	"wholefoods-scraper/lib/restyutil"
	"wholefoods-scraper/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

type RestyOptions struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
	// WrapTransport wraps the underlying http transport, e.g. with a cloudflare bypass.
	WrapTransport func(http.RoundTripper) http.RoundTripper
	// DebugOutput receives full http message dumps while debug logging is on, it may be nil.
	DebugOutput restyutil.InstrumentOutput
	// FinalURLHeader names a response header carrying the real url of a proxied response.
	FinalURLHeader string
}

type RestyFetcher struct {
	client         *resty.Client
	finalURLHeader string
}

func NewRestyFetcher(opts RestyOptions) *RestyFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	if opts.WrapTransport != nil {
		client.GetClient().Transport = opts.WrapTransport(client.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	if opts.Retries > 0 {
		client.SetRetryCount(opts.Retries)
		client.SetRetryWaitTime(time.Millisecond * 500)
		client.SetRetryMaxWaitTime(time.Second * 8)
		client.AddRetryCondition(func(res *resty.Response, err error) bool {
			if res == nil {
				return false
			}
			code := res.StatusCode()
			return code == http.StatusTooManyRequests || code >= 500
		})
	}

	telemetry.InstrumentResty(client, "lib/crawler/http")
	restyutil.InstrumentClient(client, opts.DebugOutput)

	return &RestyFetcher{client: client, finalURLHeader: opts.FinalURLHeader}
}

func (f *RestyFetcher) Fetch(ctx context.Context, req *Request) (*Response, error) {
	r := f.client.R().SetContext(ctx)
	for key, values := range req.Header {
		for _, v := range values {
			r.Header.Add(key, v)
		}
	}

	res, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, restyutil.RedactError(err)
	}

	finalURL := req.URL
	if f.finalURLHeader != "" {
		if real := res.Header().Get(f.finalURLHeader); real != "" {
			finalURL = real
		}
	}

	return &Response{
		URL:        finalURL,
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
		Body:       res.Body(),
	}, nil
}
