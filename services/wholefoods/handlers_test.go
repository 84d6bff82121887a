package wholefoods

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"wholefoods-scraper/lib/crawler"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type memoryArtifacts map[string]string

func (m memoryArtifacts) Write(id string, contents string) {
	m[id] = contents
}

func newTestSpider(categories ...string) (*Spider, memoryArtifacts) {
	artifacts := memoryArtifacts{}
	spider := NewSpider(SpiderOptions{
		StoreIDs:   []string{"10509"},
		Categories: categories,
		Dispatcher: testDispatcher(),
		Artifacts:  artifacts,
	})
	return spider, artifacts
}

func respond(req *crawler.Request, body string) *crawler.Response {
	return &crawler.Response{
		Request:    req,
		URL:        req.URL,
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       []byte(body),
	}
}

func detailSlugs(t *testing.T, requests []*crawler.Request) []string {
	t.Helper()
	var slugs []string
	for _, req := range requests {
		if req.Kind != KindProductDetail {
			continue
		}
		meta, ok := crawler.GetMeta[detailMeta](req)
		require.True(t, ok)
		slugs = append(slugs, meta.Seed.Slug)
	}
	return slugs
}

func listingOffsets(t *testing.T, requests []*crawler.Request) []int {
	t.Helper()
	var offsets []int
	for _, req := range requests {
		if req.Kind != KindListing {
			continue
		}
		meta, ok := crawler.GetMeta[listingMeta](req)
		require.True(t, ok)
		offsets = append(offsets, meta.Offset)
	}
	return offsets
}

const homepageBody = `<html><head>
<script id="__NEXT_DATA__" type="application/json">{"buildId":"build-1","page":"/"}</script>
</head><body></body></html>`

const storeSummaryBody = `{
	"status": "OPEN",
	"openedAt": "2008-03-05T00:00:00.000Z",
	"primaryLocation": {
		"latitude": 30.2707,
		"longitude": -97.7530,
		"address": {
			"STREET_ADDRESS_LINE1": "525 N Lamar Blvd",
			"CITY": "Austin",
			"STATE": "TX",
			"ZIP_CODE": "78703",
			"POSTAL_CODE": "78703-5418"
		}
	}
}`

func listingBody(count int, slugs ...string) string {
	var results []map[string]any
	for _, slug := range slugs {
		results = append(results, map[string]any{
			"name":         "Product " + slug,
			"regularPrice": 3.99,
			"slug":         slug,
			"brand":        "365 by Whole Foods Market",
		})
	}
	body, _ := json.Marshal(map[string]any{
		"results": results,
		"facets": []any{
			map[string]any{"refinements": []any{
				map[string]any{"slug": "other", "count": 5},
				map[string]any{"slug": "produce", "count": count},
			}},
		},
	})
	return string(body)
}

func TestHomepageResolvesTokenAndDrainsQueue(t *testing.T) {
	spider, _ := newTestSpider("produce")
	spider.StartingRequests(context.Background())

	listing := testDispatcher().Listing("10509", "produce", 0)
	result := spider.HandleResponse(context.Background(), respond(listing, listingBody(3, "a", "b", "c")))
	require.Empty(t, detailSlugs(t, result.Requests))
	require.Equal(t, 3, spider.State().Pending())

	result = spider.HandleResponse(context.Background(), respond(testDispatcher().Homepage(), homepageBody))
	require.False(t, result.Skipped)
	require.True(t, spider.State().Ready())
	require.Equal(t, "build-1", spider.State().Token())
	require.Equal(t, 0, spider.State().Pending())
	require.Equal(t, []string{"a", "b", "c"}, detailSlugs(t, result.Requests))
	require.Contains(t, result.Requests[0].URL, "/_next/data/build-1/product/a.json?store=10509")

	// once the token is known details are requested right away
	next := testDispatcher().Listing("10509", "produce", 60)
	result = spider.HandleResponse(context.Background(), respond(next, listingBody(3, "d")))
	require.Equal(t, []string{"d"}, detailSlugs(t, result.Requests))
	require.Empty(t, listingOffsets(t, result.Requests))
}

func TestHomepageFallbackScript(t *testing.T) {
	spider, _ := newTestSpider()
	body := `<html><script>window.__config = {"buildId":"build-2"};</script></html>`

	result := spider.HandleResponse(context.Background(), respond(testDispatcher().Homepage(), body))
	require.False(t, result.Skipped)
	require.Equal(t, "build-2", spider.State().Token())
}

func TestHomepageMissingToken(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "no script", body: `<html><body>blocked</body></html>`},
		{name: "bad json", body: `<script id="__NEXT_DATA__">{not json</script>`},
		{name: "empty build id", body: `<script id="__NEXT_DATA__">{"buildId":""}</script>`},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			spider, artifacts := newTestSpider()
			spider.State().Enqueue(PendingDetail{Slug: "a"})

			result := spider.HandleResponse(context.Background(), respond(testDispatcher().Homepage(), test.body))
			require.True(t, result.Skipped)
			require.Empty(t, result.Requests)
			require.False(t, spider.State().Ready())
			require.Equal(t, 1, spider.State().Pending())
			require.Equal(t, test.body, artifacts[homepageArtifact])
		})
	}
}

func TestStartingRequestsOneSummaryPerStore(t *testing.T) {
	spider := NewSpider(SpiderOptions{
		StoreIDs:   []string{"10509", "10002", "10509"},
		Dispatcher: testDispatcher(),
	})

	var kinds []string
	var stores []string
	for _, req := range spider.StartingRequests(context.Background()) {
		kinds = append(kinds, req.Kind)
		if req.Kind != KindStoreSummary {
			continue
		}
		meta, ok := crawler.GetMeta[storeMeta](req)
		require.True(t, ok)
		stores = append(stores, meta.StoreID)
	}
	require.Equal(t, []string{KindHomepage, KindStoreSummary, KindStoreSummary}, kinds)
	require.Equal(t, []string{"10509", "10002"}, stores)
}

func TestStoreSummary(t *testing.T) {
	spider, _ := newTestSpider("produce", "dairy-eggs")
	req := testDispatcher().StoreSummary("10509")

	result := spider.HandleResponse(context.Background(), respond(req, storeSummaryBody))
	require.Len(t, result.Items, 1)

	lat, long := 30.2707, -97.7530
	expected := StoreRecord{
		StoreID:    "10509",
		Status:     "OPEN",
		DateOpened: "2008-03-05",
		Latitude:   &lat,
		Longitude:  &long,
		Street:     "525 N Lamar Blvd",
		City:       "Austin",
		State:      "TX",
		ZipCode:    "78703",
		PostalCode: "78703-5418",
	}
	if diff := cmp.Diff(expected, result.Items[0]); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, []int{0, 0}, listingOffsets(t, result.Requests))
	var categories []string
	for _, next := range result.Requests {
		meta, _ := crawler.GetMeta[listingMeta](next)
		categories = append(categories, meta.Category)
		require.Equal(t, PriorityListing, next.Priority)
	}
	require.Equal(t, []string{"produce", "dairy-eggs"}, categories)
}

func TestStoreSummaryMissingAddress(t *testing.T) {
	spider, _ := newTestSpider("produce")
	req := testDispatcher().StoreSummary("10509")

	body := `{"status": "OPEN", "openedAt": ["2008-03-05T00:00:00Z"], "primaryLocation": {"latitude": 1.5, "longitude": 2.5}}`
	result := spider.HandleResponse(context.Background(), respond(req, body))
	require.Len(t, result.Items, 1)

	lat, long := 1.5, 2.5
	expected := StoreRecord{
		StoreID:    "10509",
		Status:     "OPEN",
		DateOpened: "2008-03-05",
		Latitude:   &lat,
		Longitude:  &long,
	}
	if diff := cmp.Diff(expected, result.Items[0]); diff != "" {
		t.Fatal(diff)
	}
	require.Len(t, result.Requests, 1)

	result = spider.HandleResponse(context.Background(), respond(req, `{"status": "CLOSED"}`))
	require.Len(t, result.Items, 1)
	require.Equal(t, StoreRecord{StoreID: "10509", Status: "CLOSED"}, result.Items[0])
}

func TestStoreSummaryMalformed(t *testing.T) {
	spider, artifacts := newTestSpider("produce")
	req := testDispatcher().StoreSummary("10509")

	result := spider.HandleResponse(context.Background(), respond(req, "<html>captcha</html>"))
	require.True(t, result.Skipped)
	require.Empty(t, result.Items)
	require.Empty(t, result.Requests)
	require.Equal(t, "<html>captcha</html>", artifacts[storeArtifact])
}

func TestListingPagination(t *testing.T) {
	spider, _ := newTestSpider("produce")
	_, err := spider.State().Resolve("build-1")
	require.NoError(t, err)

	req := testDispatcher().Listing("10509", "produce", 0)
	result := spider.HandleResponse(context.Background(), respond(req, listingBody(130, "a", "b")))

	require.Equal(t, []int{60, 120}, listingOffsets(t, result.Requests))
	for _, next := range result.Requests {
		if next.Kind == KindListing {
			require.Equal(t, PriorityPagination, next.Priority)
		}
	}
	require.Equal(t, []string{"a", "b"}, detailSlugs(t, result.Requests))

	meta, ok := crawler.GetMeta[detailMeta](result.Requests[len(result.Requests)-1])
	require.True(t, ok)
	price := 3.99
	expected := ProductRecord{
		StoreID:  "10509",
		Name:     "Product b",
		Price:    &price,
		Slug:     "b",
		Brand:    "365 by Whole Foods Market",
		Category: "produce",
	}
	if diff := cmp.Diff(expected, meta.Seed.Record); diff != "" {
		t.Fatal(diff)
	}
}

func TestListingMissingRefinement(t *testing.T) {
	spider, _ := newTestSpider("produce")
	req := testDispatcher().Listing("10509", "produce", 0)

	result := spider.HandleResponse(context.Background(), respond(req, `{"results": [{"slug": "a"}], "facets": []}`))
	require.False(t, result.Skipped)
	require.Empty(t, result.Requests)
	require.Equal(t, 1, spider.State().Pending())

	result = spider.HandleResponse(context.Background(), respond(req, `{"results": []}`))
	require.Empty(t, result.Requests)
}

func TestListingMalformed(t *testing.T) {
	spider, artifacts := newTestSpider("produce")
	req := testDispatcher().Listing("10509", "produce", 0)

	result := spider.HandleResponse(context.Background(), respond(req, "oops"))
	require.True(t, result.Skipped)
	require.Equal(t, "oops", artifacts[listingArtifact])
	require.Equal(t, 0, spider.State().Pending())
}

func detailRequest(t *testing.T) *crawler.Request {
	t.Helper()
	price := 1.99
	req, err := testDispatcher().ProductDetail("build-1", PendingDetail{
		Slug:     "organic-bananas",
		StoreID:  "10509",
		Category: "produce",
		Record: ProductRecord{
			StoreID:  "10509",
			Name:     "Organic Bananas",
			Price:    &price,
			Slug:     "organic-bananas",
			Brand:    "365 by Whole Foods Market",
			Category: "produce",
		},
	})
	require.NoError(t, err)
	return req
}

func detailBody(nutrition string) string {
	return fmt.Sprintf(`{"pageProps": {"data": {
		"name": "Organic Bananas",
		"asin": "B07FYZ7WB2",
		"id": "[AMZN123]",
		"rank": 4,
		"isAvailable": true,
		"categories": {"name": "Produce", "childCategory": {"name": "Fresh Fruit"}},
		"diets": [{"name": "Organic"}, {"name": "Vegan"}],
		"ingredients": ["Organic bananas"],
		"allergens": [],
		"additives": null,
		"certifications": [{"name": "USDA Organic"}],
		"nutritionGroup": "Nutrition Facts",
		"nutritionLabelFormat": "standard",
		"nutritionElements": %s,
		"servingInfo": {"servingSize": 126, "servingSizeUom": "g"},
		"isAlcoholic": false,
		"uom": "lb",
		"images": [{"image": "https://m.media-amazon.com/bananas.jpg"}, {"image": "second.jpg"}],
		"related": [{"slug": "organic-apples"}, {"slug": "organic-pears"}]
	}}}`, nutrition)
}

func TestProductDetailMerge(t *testing.T) {
	spider, _ := newTestSpider("produce")

	nutrition := `[
		{"key": "calories", "name": "Calories", "uom": "kcal", "perServing": 5, "fullDvp": null},
		{"key": "fat", "name": "Total Fat", "uom": "g", "perServing": 0, "fullDvp": 0}
	]`
	result := spider.HandleResponse(context.Background(), respond(detailRequest(t), detailBody(nutrition)))
	require.False(t, result.Skipped)
	require.Len(t, result.Items, 1)

	price, rank := 1.99, 4.0
	available, alcoholic := true, false
	expected := ProductRecord{
		StoreID:              "10509",
		Name:                 "Organic Bananas",
		Price:                &price,
		Slug:                 "organic-bananas",
		Brand:                "365 by Whole Foods Market",
		ASIN:                 "B07FYZ7WB2",
		AmazonProductID:      "AMZN123",
		Rank:                 &rank,
		IsAvailable:          &available,
		Category:             "Produce",
		Category2:            "Fresh Fruit",
		Diets:                []string{"Organic", "Vegan"},
		Ingredients:          []string{"Organic bananas"},
		Allergens:            []string{},
		Additives:            []string{},
		Certifications:       []string{"USDA Organic"},
		NutritionGroup:       "Nutrition Facts",
		NutritionLabelFormat: "standard",
		NutritionElements: []NutritionElement{
			{Key: "calories", Name: "Calories", UnitOfMeasure: "kcal", AmountPerServing: 5.0},
		},
		ServingInfo:     json.RawMessage(`{"servingSize": 126, "servingSizeUom": "g"}`),
		IsAlcoholic:     &alcoholic,
		UnitOfMeasure:   "lb",
		Image:           "https://m.media-amazon.com/bananas.jpg",
		RelatedProducts: []string{"organic-apples", "organic-pears"},
	}
	if diff := cmp.Diff(expected, result.Items[0]); diff != "" {
		t.Fatal(diff)
	}
}

func TestProductDetailListingCategoryFallback(t *testing.T) {
	spider, _ := newTestSpider("produce")
	body := `{"pageProps": {"data": {"nutritionElements": [{"key": "k", "perServing": "2"}]}}}`

	result := spider.HandleResponse(context.Background(), respond(detailRequest(t), body))
	require.Len(t, result.Items, 1)
	record := result.Items[0].(ProductRecord)
	require.Equal(t, "produce", record.Category)
	require.Empty(t, record.Category2)
	require.Empty(t, record.Category3)
	require.Empty(t, record.Image)
	require.Nil(t, record.ServingInfo)
}

func TestProductDetailDropped(t *testing.T) {
	testCases := []struct {
		name      string
		nutrition string
	}{
		{name: "empty", nutrition: `[]`},
		{name: "null", nutrition: `null`},
		{name: "all unusable", nutrition: `[
			{"key": "a", "perServing": 0},
			{"key": "b", "perServing": "0"},
			{"key": "c", "perServing": ""},
			{"key": "d", "perServing": null},
			{"key": "e"}
		]`},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			spider, _ := newTestSpider("produce")
			result := spider.HandleResponse(context.Background(), respond(detailRequest(t), detailBody(test.nutrition)))
			require.True(t, result.Skipped)
			require.Empty(t, result.Items)
			require.Empty(t, result.Requests)
		})
	}
}

func TestProductDetailMissingPageProps(t *testing.T) {
	spider, artifacts := newTestSpider("produce")
	result := spider.HandleResponse(context.Background(), respond(detailRequest(t), `{"notFound": true}`))
	require.True(t, result.Skipped)
	require.Empty(t, result.Items)
	require.Empty(t, artifacts)
}

func TestProductDetailMalformed(t *testing.T) {
	spider, artifacts := newTestSpider("produce")
	result := spider.HandleResponse(context.Background(), respond(detailRequest(t), `{"pageProps": `))
	require.True(t, result.Skipped)
	require.Equal(t, `{"pageProps": `, artifacts[detailArtifact])
}

func TestUnknownKind(t *testing.T) {
	spider, _ := newTestSpider()
	req := crawler.GET("https://example.com")
	req.Kind = "robots"
	result := spider.HandleResponse(context.Background(), respond(req, ""))
	require.True(t, result.Skipped)
}
