package wholefoods

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"wholefoods-scraper/lib/crawler"
)

const (
	KindHomepage      = "homepage"
	KindStoreSummary  = "store_summary"
	KindListing       = "listing"
	KindProductDetail = "product_detail"
)

const (
	PriorityHomepage     = 100
	PriorityStoreSummary = 75
	PriorityListing      = 50
	PriorityPagination   = 40
	PriorityDetail       = 30
)

// the store summary endpoint only answers with json for this header set
var storeSummaryHeaders = map[string]string{
	"Accept":           "application/json",
	"X-Requested-With": "XMLHttpRequest",
	"User-Agent":       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Referer":          "https://www.wholefoodsmarket.com/stores/store-locator",
}

type storeMeta struct {
	StoreID string
}

type listingMeta struct {
	StoreID  string
	Category string
	Offset   int
}

type detailMeta struct {
	Seed PendingDetail
}

// Dispatcher builds the requests of every crawl stage.
type Dispatcher struct {
	BaseURL string
	Limit   int
	Country string
}

func NewDispatcher(cfg Config) Dispatcher {
	return Dispatcher{
		BaseURL: cfg.BaseURL,
		Limit:   cfg.Limit,
		Country: cfg.Country,
	}
}

func (d Dispatcher) base() string {
	return strings.TrimRight(d.BaseURL, "/")
}

func (d Dispatcher) Homepage() *crawler.Request {
	req := crawler.GET(d.base() + "/")
	req.Kind = KindHomepage
	req.Priority = PriorityHomepage
	req.Flags = crawler.Flags{
		RenderJS:    true,
		WaitFor:     10,
		KeepHeaders: true,
		Residential: true,
		Country:     d.Country,
	}
	return req
}

func (d Dispatcher) StoreSummary(storeID string) *crawler.Request {
	req := crawler.GET(fmt.Sprintf("%s/stores/%s/summary", d.base(), url.PathEscape(storeID)))
	req.Kind = KindStoreSummary
	req.Priority = PriorityStoreSummary
	req.DontFilter = true
	req.Flags = crawler.Flags{
		SkipHeaders: true,
		Country:     d.Country,
	}
	setHeaders(req.Header, storeSummaryHeaders)
	req.Meta = storeMeta{StoreID: storeID}
	return req
}

func (d Dispatcher) Listing(storeID, category string, offset int) *crawler.Request {
	escaped := url.QueryEscape(category)
	req := crawler.GET(fmt.Sprintf(
		"%s/api/products/category/%s?leafCategory=%s&store=%s&limit=%d&offset=%d",
		d.base(), url.PathEscape(category), escaped, url.QueryEscape(storeID), d.Limit, offset,
	))
	req.Kind = KindListing
	req.Priority = PriorityListing
	if offset > 0 {
		req.Priority = PriorityPagination
	}
	req.Flags = crawler.Flags{Country: d.Country}
	req.Meta = listingMeta{StoreID: storeID, Category: category, Offset: offset}
	return req
}

// PaginationOffsets returns the offsets of the listing pages after the first one
// for a category holding `total` products.
func (d Dispatcher) PaginationOffsets(total int) []int {
	if d.Limit <= 0 || total <= d.Limit {
		return nil
	}
	pages := (total + d.Limit - 1) / d.Limit
	offsets := make([]int, 0, pages-1)
	for page := 1; page < pages; page++ {
		offsets = append(offsets, page*d.Limit)
	}
	return offsets
}

func (d Dispatcher) ProductDetail(token string, seed PendingDetail) (*crawler.Request, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	req := crawler.GET(fmt.Sprintf(
		"%s/_next/data/%s/product/%s.json?store=%s",
		d.base(), url.PathEscape(token), url.PathEscape(seed.Slug), url.QueryEscape(seed.StoreID),
	))
	req.Kind = KindProductDetail
	req.Priority = PriorityDetail
	req.Flags = crawler.Flags{Country: d.Country}
	req.Meta = detailMeta{Seed: seed}
	return req, nil
}

func setHeaders(header http.Header, values map[string]string) {
	for key, value := range values {
		header.Set(key, value)
	}
}
