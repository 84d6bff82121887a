package crawler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type hostSlot struct {
	sem     chan struct{}
	limiter *rate.Limiter
}

// hostLimits caps concurrent requests per remote host and spaces consecutive
// requests to the same host by at least `delay`.
type hostLimits struct {
	maxPerHost int
	delay      time.Duration

	mu    sync.Mutex
	hosts map[string]*hostSlot
}

func newHostLimits(maxPerHost int, delay time.Duration) *hostLimits {
	if maxPerHost <= 0 {
		maxPerHost = 1
	}
	return &hostLimits{
		maxPerHost: maxPerHost,
		delay:      delay,
		hosts:      map[string]*hostSlot{},
	}
}

func (h *hostLimits) slot(host string) *hostSlot {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.hosts[host]
	if ok {
		return s
	}
	limit := rate.Inf
	if h.delay > 0 {
		limit = rate.Every(h.delay)
	}
	s = &hostSlot{
		sem:     make(chan struct{}, h.maxPerHost),
		limiter: rate.NewLimiter(limit, 1),
	}
	h.hosts[host] = s
	return s
}

func (h *hostLimits) acquire(ctx context.Context, host string) (func(), error) {
	s := h.slot(host)
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	err := s.limiter.Wait(ctx)
	if err != nil {
		<-s.sem
		return nil, err
	}
	return func() { <-s.sem }, nil
}
