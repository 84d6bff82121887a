package crawler

import "context"

type Spider interface {
	Name() string
	StartingRequests(ctx context.Context) []*Request
	HandleResponse(ctx context.Context, res *Response) Result
	// HandleError is called for transport failures and non-2xx responses,
	// the request's branch of work ends there.
	HandleError(ctx context.Context, req *Request, err error)
}

type Pipeline interface {
	Process(ctx context.Context, item any) error
}

type PipelineFunc func(ctx context.Context, item any) error

func (f PipelineFunc) Process(ctx context.Context, item any) error {
	return f(ctx, item)
}

type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

// Middleware rewrites a request (a clone of the scheduled one) right before it is fetched.
type Middleware func(ctx context.Context, req *Request) error
