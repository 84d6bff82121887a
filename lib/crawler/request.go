package crawler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Flags are request-scoped hints for the proxy and header middlewares.
type Flags struct {
	RenderJS    bool
	WaitFor     int
	Residential bool
	KeepHeaders bool
	SkipHeaders bool
	Country     string
}

type Request struct {
	Method string
	URL    string
	Header http.Header
	// higher priority requests are dispatched first
	Priority int
	// DontFilter bypasses url deduplication
	DontFilter bool
	// Kind names the handler the response is routed to
	Kind  string
	Meta  any
	Flags Flags
}

func GET(link string) *Request {
	return &Request{
		Method: http.MethodGet,
		URL:    link,
		Header: http.Header{},
	}
}

// Clone returns a copy that middlewares may rewrite without touching the original.
// Meta is shared, it is treated as read-only once a request is scheduled.
func (r *Request) Clone() *Request {
	out := *r
	out.Header = r.Header.Clone()
	if out.Header == nil {
		out.Header = http.Header{}
	}
	return &out
}

func (r *Request) Fingerprint() string {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	return fmt.Sprintf("%s %s", method, r.URL)
}

func (r *Request) Host() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// GetMeta returns the request's meta if it is of type T.
func GetMeta[T any](r *Request) (T, bool) {
	meta, ok := r.Meta.(T)
	return meta, ok
}

type Response struct {
	// Request is the request as the spider scheduled it, before middlewares.
	Request *Request
	// URL is the final url of the response, this may differ from Request.URL
	// when the request was proxied or redirected.
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) JSON(out any) error {
	return json.Unmarshal(r.Body, out)
}

func (r *Response) Text() string {
	return string(r.Body)
}

// HTTPError is passed to Spider.HandleError for responses with a non-2xx status.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.URL)
}
