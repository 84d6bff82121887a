package wholefoods

import "encoding/json"

// StoreRecord is emitted once per configured store. Fields the store summary
// did not provide are left empty and omitted from the feed.
type StoreRecord struct {
	StoreID    string   `json:"store_id"`
	Status     string   `json:"status,omitempty"`
	DateOpened string   `json:"date_opened,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Street     string   `json:"street,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	ZipCode    string   `json:"zip_code,omitempty"`
	PostalCode string   `json:"postal_code,omitempty"`
}

type NutritionElement struct {
	Key                   string `json:"key"`
	Name                  string `json:"name"`
	UnitOfMeasure         string `json:"unit_of_measure"`
	AmountPerServing      any    `json:"amount_per_serving"`
	RecommendedDailyValue any    `json:"recommended_daily_value"`
}

// ProductRecord is seeded by the listing stage and completed by the detail stage.
type ProductRecord struct {
	StoreID string   `json:"store_id"`
	Name    string   `json:"name,omitempty"`
	Price   *float64 `json:"price,omitempty"`
	Slug    string   `json:"slug"`
	Brand   string   `json:"brand,omitempty"`

	ASIN            string   `json:"asin,omitempty"`
	AmazonProductID string   `json:"amazon_product_id,omitempty"`
	Rank            *float64 `json:"rank,omitempty"`
	IsAvailable     *bool    `json:"is_available,omitempty"`

	Category  string `json:"category,omitempty"`
	Category2 string `json:"category_2,omitempty"`
	Category3 string `json:"category_3,omitempty"`

	Diets          []string `json:"diets"`
	Ingredients    []string `json:"ingredients"`
	Allergens      []string `json:"allergens"`
	Additives      []string `json:"additives"`
	Certifications []string `json:"certifications"`

	NutritionGroup       string             `json:"nutrition_group,omitempty"`
	NutritionLabelFormat string             `json:"nutrition_label_format,omitempty"`
	NutritionElements    []NutritionElement `json:"nutrition_elements"`

	ServingInfo     json.RawMessage `json:"serving_info,omitempty"`
	IsAlcoholic     *bool           `json:"is_alcoholic,omitempty"`
	UnitOfMeasure   string          `json:"unit_of_measure,omitempty"`
	Image           string          `json:"image,omitempty"`
	RelatedProducts []string        `json:"related_products"`
}
