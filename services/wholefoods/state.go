package wholefoods

import "errors"

var (
	ErrTokenResolved = errors.New("build token was already resolved")
	ErrEmptyToken    = errors.New("build token is empty")
)

// PendingDetail is everything needed to build a product detail request once
// the build token is known.
type PendingDetail struct {
	Slug     string
	StoreID  string
	Category string
	Record   ProductRecord
}

// CrawlState holds the build token and the detail requests waiting on it. It
// starts out token-pending and moves to token-ready exactly once.
type CrawlState struct {
	token   string
	ready   bool
	pending []PendingDetail
}

func NewCrawlState() *CrawlState {
	return &CrawlState{}
}

func (s *CrawlState) Ready() bool {
	return s.ready
}

func (s *CrawlState) Token() string {
	return s.token
}

func (s *CrawlState) Pending() int {
	return len(s.pending)
}

// Enqueue holds a detail request until the token is resolved.
func (s *CrawlState) Enqueue(detail PendingDetail) {
	s.pending = append(s.pending, detail)
}

// Resolve records the token and returns the pending details in the order they
// were enqueued, the queue is left empty.
func (s *CrawlState) Resolve(token string) ([]PendingDetail, error) {
	if s.ready {
		return nil, ErrTokenResolved
	}
	if token == "" {
		return nil, ErrEmptyToken
	}
	s.token = token
	s.ready = true
	drained := s.pending
	s.pending = nil
	return drained, nil
}
