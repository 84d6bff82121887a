package wholefoods

import (
	"net/url"
	"testing"
	"wholefoods-scraper/lib/crawler"

	"github.com/stretchr/testify/require"
)

func testDispatcher() Dispatcher {
	return Dispatcher{BaseURL: "https://www.wholefoodsmarket.com/", Limit: 60, Country: "us"}
}

func TestDispatcherHomepage(t *testing.T) {
	req := testDispatcher().Homepage()
	require.Equal(t, "https://www.wholefoodsmarket.com/", req.URL)
	require.Equal(t, KindHomepage, req.Kind)
	require.Equal(t, PriorityHomepage, req.Priority)
	require.Equal(t, crawler.Flags{
		RenderJS:    true,
		WaitFor:     10,
		KeepHeaders: true,
		Residential: true,
		Country:     "us",
	}, req.Flags)
}

func TestDispatcherStoreSummary(t *testing.T) {
	req := testDispatcher().StoreSummary("10509")
	require.Equal(t, "https://www.wholefoodsmarket.com/stores/10509/summary", req.URL)
	require.True(t, req.DontFilter)
	require.True(t, req.Flags.SkipHeaders)
	require.Equal(t, "application/json", req.Header.Get("Accept"))
	require.Equal(t, "XMLHttpRequest", req.Header.Get("X-Requested-With"))
	require.Equal(t, "https://www.wholefoodsmarket.com/stores/store-locator", req.Header.Get("Referer"))
	require.NotEmpty(t, req.Header.Get("User-Agent"))

	meta, ok := crawler.GetMeta[storeMeta](req)
	require.True(t, ok)
	require.Equal(t, "10509", meta.StoreID)
}

func TestDispatcherListing(t *testing.T) {
	d := testDispatcher()

	first := d.Listing("10509", "dairy-eggs", 0)
	require.Equal(t, PriorityListing, first.Priority)
	parsed, err := url.Parse(first.URL)
	require.NoError(t, err)
	require.Equal(t, "/api/products/category/dairy-eggs", parsed.Path)
	require.Equal(t, url.Values{
		"leafCategory": {"dairy-eggs"},
		"store":        {"10509"},
		"limit":        {"60"},
		"offset":       {"0"},
	}, parsed.Query())

	next := d.Listing("10509", "dairy-eggs", 120)
	require.Equal(t, PriorityPagination, next.Priority)
	meta, ok := crawler.GetMeta[listingMeta](next)
	require.True(t, ok)
	require.Equal(t, listingMeta{StoreID: "10509", Category: "dairy-eggs", Offset: 120}, meta)
}

func TestDispatcherPriorities(t *testing.T) {
	require.Greater(t, PriorityHomepage, PriorityStoreSummary)
	require.Greater(t, PriorityStoreSummary, PriorityListing)
	require.Greater(t, PriorityListing, PriorityPagination)
	require.Greater(t, PriorityPagination, PriorityDetail)
}

func TestDispatcherPaginationOffsets(t *testing.T) {
	d := testDispatcher()
	require.Equal(t, []int{60, 120}, d.PaginationOffsets(130))
	require.Equal(t, []int{60}, d.PaginationOffsets(120))
	require.Empty(t, d.PaginationOffsets(60))
	require.Empty(t, d.PaginationOffsets(1))
	require.Empty(t, d.PaginationOffsets(0))
}

func TestDispatcherProductDetail(t *testing.T) {
	d := testDispatcher()
	seed := PendingDetail{Slug: "organic-bananas", StoreID: "10509", Category: "produce"}

	req, err := d.ProductDetail("abc123", seed)
	require.NoError(t, err)
	require.Equal(t, "https://www.wholefoodsmarket.com/_next/data/abc123/product/organic-bananas.json?store=10509", req.URL)
	require.Equal(t, PriorityDetail, req.Priority)
	meta, ok := crawler.GetMeta[detailMeta](req)
	require.True(t, ok)
	require.Equal(t, seed, meta.Seed)

	_, err = d.ProductDetail("", seed)
	require.ErrorIs(t, err, ErrEmptyToken)
}
