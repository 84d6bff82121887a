package wholefoods

import "encoding/json"

// wire shapes of the storefront's json endpoints, loosely typed fields are
// reduced by the normalizer

type nextData struct {
	BuildID string `json:"buildId"`
}

type storeSummaryPayload struct {
	Status          any            `json:"status"`
	OpenedAt        any            `json:"openedAt"`
	PrimaryLocation *storeLocation `json:"primaryLocation"`
}

type storeLocation struct {
	Latitude  any           `json:"latitude"`
	Longitude any           `json:"longitude"`
	Address   *storeAddress `json:"address"`
}

type storeAddress struct {
	Street     any `json:"STREET_ADDRESS_LINE1"`
	City       any `json:"CITY"`
	State      any `json:"STATE"`
	ZipCode    any `json:"ZIP_CODE"`
	PostalCode any `json:"POSTAL_CODE"`
}

type listingPayload struct {
	Results []listingProduct `json:"results"`
	Facets  []listingFacet   `json:"facets"`
}

type listingProduct struct {
	Name         any `json:"name"`
	RegularPrice any `json:"regularPrice"`
	Slug         any `json:"slug"`
	Brand        any `json:"brand"`
}

type listingFacet struct {
	Refinements []listingRefinement `json:"refinements"`
}

type listingRefinement struct {
	Slug  string `json:"slug"`
	Count any    `json:"count"`
}

type detailPayload struct {
	PageProps *struct {
		Data productDetail `json:"data"`
	} `json:"pageProps"`
}

type categoryNode struct {
	Name          any           `json:"name"`
	ChildCategory *categoryNode `json:"childCategory"`
}

type productImage struct {
	Image any `json:"image"`
}

type productDetail struct {
	Name                 any                   `json:"name"`
	ASIN                 any                   `json:"asin"`
	ID                   any                   `json:"id"`
	Rank                 any                   `json:"rank"`
	IsAvailable          any                   `json:"isAvailable"`
	Categories           *categoryNode         `json:"categories"`
	Diets                any                   `json:"diets"`
	Ingredients          any                   `json:"ingredients"`
	Allergens            any                   `json:"allergens"`
	Additives            any                   `json:"additives"`
	Certifications       any                   `json:"certifications"`
	NutritionGroup       any                   `json:"nutritionGroup"`
	NutritionLabelFormat any                   `json:"nutritionLabelFormat"`
	NutritionElements    []RawNutritionElement `json:"nutritionElements"`
	ServingInfo          json.RawMessage       `json:"servingInfo"`
	IsAlcoholic          any                   `json:"isAlcoholic"`
	UOM                  any                   `json:"uom"`
	Images               []productImage        `json:"images"`
	Related              any                   `json:"related"`
}

// RawNutritionElement is a nutrition element as the product detail endpoint names it.
type RawNutritionElement struct {
	Key        any `json:"key"`
	Name       any `json:"name"`
	UOM        any `json:"uom"`
	PerServing any `json:"perServing"`
	FullDVP    any `json:"fullDvp"`
}
