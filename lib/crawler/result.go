package crawler

// Result is what a handler returns for one response: records to hand to the
// pipeline, follow-up requests to schedule, or a deliberate skip.
type Result struct {
	Items    []any
	Requests []*Request
	Skipped  bool
	Reason   string
}

func Emit(items ...any) Result {
	return Result{Items: items}
}

func Follow(requests ...*Request) Result {
	return Result{Requests: requests}
}

func Skip(reason string) Result {
	return Result{Skipped: true, Reason: reason}
}

func (r Result) Emit(items ...any) Result {
	r.Items = append(r.Items, items...)
	return r
}

func (r Result) Follow(requests ...*Request) Result {
	r.Requests = append(r.Requests, requests...)
	return r
}
