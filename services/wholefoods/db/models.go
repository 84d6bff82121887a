package db

import "database/sql"

type Store struct {
	ID         string
	Status     sql.NullString
	DateOpened sql.NullString
	Latitude   sql.NullFloat64
	Longitude  sql.NullFloat64
	Street     sql.NullString
	City       sql.NullString
	State      sql.NullString
	ZipCode    sql.NullString
	PostalCode sql.NullString
	UpdatedAt  int64
}

type Product struct {
	StoreID              string
	Slug                 string
	Name                 sql.NullString
	Price                sql.NullFloat64
	Brand                sql.NullString
	Asin                 sql.NullString
	AmazonProductID      sql.NullString
	Rank                 sql.NullFloat64
	IsAvailable          sql.NullBool
	Category             sql.NullString
	Category2            sql.NullString
	Category3            sql.NullString
	Diets                string
	Ingredients          string
	Allergens            string
	Additives            string
	Certifications       string
	RelatedProducts      string
	NutritionGroup       sql.NullString
	NutritionLabelFormat sql.NullString
	ServingInfo          sql.NullString
	IsAlcoholic          sql.NullBool
	UnitOfMeasure        sql.NullString
	Image                sql.NullString
	UpdatedAt            int64
}

type NutritionElement struct {
	StoreID               string
	Slug                  string
	Position              int64
	Key                   string
	Name                  string
	UnitOfMeasure         string
	AmountPerServing      string
	RecommendedDailyValue sql.NullString
}
