package wholefoods

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"wholefoods-scraper/lib/crawler"
	"wholefoods-scraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	homepageArtifact = "wholefoods_response.html"
	storeArtifact    = "store_summary_error.html"
	listingArtifact  = "product_listings_error.html"
	detailArtifact   = "product_details_error.json"
)

var jsonObjectPattern = regexp.MustCompile(`{.*}`)

func preview(body []byte) string {
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}

// extractNextData finds the next.js data blob, falling back to the first object
// literal in any script mentioning buildId.
func extractNextData(body []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	text, ok := htmlutil.SelectText(doc, "script#__NEXT_DATA__")
	if ok {
		return text, true
	}

	slog.Warn("could not find __NEXT_DATA__, trying scripts containing buildId")
	for _, script := range htmlutil.ScriptsContaining(doc, "buildId") {
		match := jsonObjectPattern.FindString(script)
		if match != "" {
			return match, true
		}
		slog.Error("failed to extract json from script containing buildId")
	}
	return "", false
}

func (s *Spider) handleHomepage(ctx context.Context, state *CrawlState, res *crawler.Response) crawler.Result {
	slog.Info("received homepage", "status", res.StatusCode, "url", res.URL)

	text, ok := extractNextData(res.Body)
	if !ok {
		slog.Error("__NEXT_DATA__ script not found, product details will not be fetched")
		s.saveArtifact(homepageArtifact, res.Body)
		return crawler.Skip("build token not found")
	}

	var data nextData
	err := json.Unmarshal([]byte(text), &data)
	if err != nil {
		slog.Error("failed to parse __NEXT_DATA__ as json", "err", err)
		s.saveArtifact(homepageArtifact, res.Body)
		return crawler.Skip("malformed __NEXT_DATA__")
	}
	if data.BuildID == "" {
		slog.Error("__NEXT_DATA__ has no buildId, product details will not be fetched")
		s.saveArtifact(homepageArtifact, res.Body)
		return crawler.Skip("build token not found")
	}

	drained, err := state.Resolve(data.BuildID)
	if err != nil {
		slog.Warn("ignoring build token", "build_id", data.BuildID, "err", err)
		return crawler.Skip(err.Error())
	}
	slog.Info("extracted build token", "build_id", data.BuildID, "queued", len(drained))

	var result crawler.Result
	for _, seed := range drained {
		req, err := s.opts.Dispatcher.ProductDetail(state.Token(), seed)
		if err != nil {
			slog.Error("failed to build product detail request", "slug", seed.Slug, "err", err)
			continue
		}
		result = result.Follow(req)
	}
	return result
}

func (s *Spider) handleStoreSummary(ctx context.Context, res *crawler.Response) crawler.Result {
	meta, ok := crawler.GetMeta[storeMeta](res.Request)
	if !ok {
		slog.Error("store summary request without store meta", "url", res.Request.URL)
		return crawler.Skip("missing meta")
	}
	log := slog.With("store_id", meta.StoreID)
	log.Info("received store summary", "status", res.StatusCode)

	var payload storeSummaryPayload
	err := res.JSON(&payload)
	if err != nil {
		log.Error("failed to parse store summary json", "err", err, "body", preview(res.Body))
		s.saveArtifact(storeArtifact, res.Body)
		return crawler.Skip("malformed store summary")
	}

	record := StoreRecord{
		StoreID:    meta.StoreID,
		Status:     textValue(payload.Status),
		DateOpened: TruncateDate(payload.OpenedAt),
	}

	location := payload.PrimaryLocation
	if location == nil {
		log.Warn("no location data available in store summary")
		location = &storeLocation{}
	}
	record.Latitude = numberValue(location.Latitude)
	record.Longitude = numberValue(location.Longitude)

	if location.Address == nil {
		log.Warn("no address data available in store summary")
	} else {
		address := location.Address
		record.Street = textValue(address.Street)
		record.City = textValue(address.City)
		record.State = textValue(address.State)
		record.ZipCode = textValue(address.ZipCode)
		record.PostalCode = textValue(address.PostalCode)
	}

	result := crawler.Emit(record)
	for _, category := range s.opts.Categories {
		result = result.Follow(s.opts.Dispatcher.Listing(meta.StoreID, category, 0))
	}
	return result
}

func refinementCount(facets []listingFacet, category string) (int, bool) {
	if len(facets) == 0 {
		return 0, false
	}
	for _, refinement := range facets[0].Refinements {
		if refinement.Slug == category {
			return intValue(refinement.Count), true
		}
	}
	return 0, false
}

func (s *Spider) handleListing(ctx context.Context, state *CrawlState, res *crawler.Response) crawler.Result {
	meta, ok := crawler.GetMeta[listingMeta](res.Request)
	if !ok {
		slog.Error("listing request without listing meta", "url", res.Request.URL)
		return crawler.Skip("missing meta")
	}
	log := slog.With("store_id", meta.StoreID, "category", meta.Category, "offset", meta.Offset)

	var payload listingPayload
	err := res.JSON(&payload)
	if err != nil {
		log.Error("failed to parse product listings json", "err", err)
		s.saveArtifact(listingArtifact, res.Body)
		return crawler.Skip("malformed product listings")
	}
	log.Info("received product listings", "products", len(payload.Results))

	var result crawler.Result
	if meta.Offset == 0 {
		total, found := refinementCount(payload.Facets, meta.Category)
		if !found {
			log.Warn("could not find category refinement")
		} else {
			offsets := s.opts.Dispatcher.PaginationOffsets(total)
			log.Info("category total", "total", total, "follow_up_pages", len(offsets))
			for _, offset := range offsets {
				result = result.Follow(s.opts.Dispatcher.Listing(meta.StoreID, meta.Category, offset))
			}
		}
	}

	for _, product := range payload.Results {
		slug := textValue(product.Slug)
		if slug == "" {
			log.Warn("skipping listed product without slug", "name", textValue(product.Name))
			continue
		}
		seed := PendingDetail{
			Slug:     slug,
			StoreID:  meta.StoreID,
			Category: meta.Category,
			Record: ProductRecord{
				StoreID:  meta.StoreID,
				Name:     textValue(product.Name),
				Price:    numberValue(product.RegularPrice),
				Slug:     slug,
				Brand:    textValue(product.Brand),
				Category: meta.Category,
			},
		}

		if !state.Ready() {
			log.Debug("queueing product detail until build token is known", "slug", slug)
			state.Enqueue(seed)
			continue
		}
		req, err := s.opts.Dispatcher.ProductDetail(state.Token(), seed)
		if err != nil {
			log.Error("failed to build product detail request", "slug", slug, "err", err)
			continue
		}
		result = result.Follow(req)
	}
	return result
}

func (s *Spider) handleProductDetail(ctx context.Context, res *crawler.Response) crawler.Result {
	meta, ok := crawler.GetMeta[detailMeta](res.Request)
	if !ok {
		slog.Error("product detail request without detail meta", "url", res.Request.URL)
		return crawler.Skip("missing meta")
	}
	seed := meta.Seed
	log := slog.With("store_id", seed.StoreID, "slug", seed.Slug)

	var payload detailPayload
	err := res.JSON(&payload)
	if err != nil {
		log.Error("failed to parse product details json", "err", err)
		s.saveArtifact(detailArtifact, res.Body)
		return crawler.Skip("malformed product details")
	}
	if payload.PageProps == nil {
		log.Warn("missing pageProps in product details")
		return crawler.Skip("missing pageProps")
	}
	detail := payload.PageProps.Data

	nutrition := FilterNutrition(detail.NutritionElements)
	if len(nutrition) == 0 {
		log.Info("skipping product without usable nutrition elements", "name", textValue(detail.Name))
		return crawler.Skip("no usable nutrition")
	}

	return crawler.Emit(mergeDetail(seed, detail, nutrition))
}

func mergeDetail(seed PendingDetail, detail productDetail, nutrition []NutritionElement) ProductRecord {
	record := seed.Record

	record.ASIN = textValue(detail.ASIN)
	record.AmazonProductID = CleanID(detail.ID)
	record.Rank = numberValue(detail.Rank)
	record.IsAvailable = boolValue(detail.IsAvailable)

	path := categoryPath(detail.Categories)
	record.Category = seed.Category
	if path[0] != "" {
		record.Category = path[0]
	}
	record.Category2 = path[1]
	record.Category3 = path[2]

	record.Diets = NameList(detail.Diets)
	record.Ingredients = StringList(detail.Ingredients)
	record.Allergens = StringList(detail.Allergens)
	record.Additives = StringList(detail.Additives)
	record.Certifications = StringList(detail.Certifications)

	record.NutritionGroup = textValue(detail.NutritionGroup)
	record.NutritionLabelFormat = textValue(detail.NutritionLabelFormat)
	record.NutritionElements = nutrition

	record.ServingInfo = rawValue(detail.ServingInfo)
	record.IsAlcoholic = boolValue(detail.IsAlcoholic)
	record.UnitOfMeasure = textValue(detail.UOM)
	if len(detail.Images) > 0 {
		record.Image = textValue(detail.Images[0].Image)
	}
	record.RelatedProducts = SlugList(detail.Related)

	return record
}
