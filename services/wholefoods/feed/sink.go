package feed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
	"wholefoods-scraper/services/wholefoods"
	"wholefoods-scraper/services/wholefoods/db"
)

// DBSink persists records into the crawl database, re-crawling a store
// replaces its previous rows.
type DBSink struct {
	db  *sql.DB
	qry *db.Queries
	now func() time.Time
}

func NewDBSink(ctx context.Context, database *sql.DB) (*DBSink, error) {
	err := db.Migrate(ctx, database)
	if err != nil {
		return nil, err
	}
	return &DBSink{
		db:  database,
		qry: db.New(database),
		now: time.Now,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func jsonList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	out, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(out)
}

func jsonValue(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *DBSink) WriteStore(ctx context.Context, record wholefoods.StoreRecord) error {
	err := s.qry.UpsertStore(ctx, db.UpsertStoreParams{
		ID:         record.StoreID,
		Status:     nullString(record.Status),
		DateOpened: nullString(record.DateOpened),
		Latitude:   nullFloat(record.Latitude),
		Longitude:  nullFloat(record.Longitude),
		Street:     nullString(record.Street),
		City:       nullString(record.City),
		State:      nullString(record.State),
		ZipCode:    nullString(record.ZipCode),
		PostalCode: nullString(record.PostalCode),
		UpdatedAt:  s.now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("upsert store %s: %w", record.StoreID, err)
	}
	return nil
}

func (s *DBSink) WriteProduct(ctx context.Context, record wholefoods.ProductRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	qry := s.qry.WithTx(tx)

	err = qry.UpsertProduct(ctx, db.UpsertProductParams{
		StoreID:              record.StoreID,
		Slug:                 record.Slug,
		Name:                 nullString(record.Name),
		Price:                nullFloat(record.Price),
		Brand:                nullString(record.Brand),
		Asin:                 nullString(record.ASIN),
		AmazonProductID:      nullString(record.AmazonProductID),
		Rank:                 nullFloat(record.Rank),
		IsAvailable:          nullBool(record.IsAvailable),
		Category:             nullString(record.Category),
		Category2:            nullString(record.Category2),
		Category3:            nullString(record.Category3),
		Diets:                jsonList(record.Diets),
		Ingredients:          jsonList(record.Ingredients),
		Allergens:            jsonList(record.Allergens),
		Additives:            jsonList(record.Additives),
		Certifications:       jsonList(record.Certifications),
		RelatedProducts:      jsonList(record.RelatedProducts),
		NutritionGroup:       nullString(record.NutritionGroup),
		NutritionLabelFormat: nullString(record.NutritionLabelFormat),
		ServingInfo:          nullString(string(record.ServingInfo)),
		IsAlcoholic:          nullBool(record.IsAlcoholic),
		UnitOfMeasure:        nullString(record.UnitOfMeasure),
		Image:                nullString(record.Image),
		UpdatedAt:            s.now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("upsert product %s/%s: %w", record.StoreID, record.Slug, err)
	}

	err = qry.DeleteNutritionElements(ctx, db.DeleteNutritionElementsParams{
		StoreID: record.StoreID,
		Slug:    record.Slug,
	})
	if err != nil {
		return err
	}
	for i, elem := range record.NutritionElements {
		amount, err := jsonValue(elem.AmountPerServing)
		if err != nil {
			return err
		}
		var dailyValue sql.NullString
		if elem.RecommendedDailyValue != nil {
			encoded, err := jsonValue(elem.RecommendedDailyValue)
			if err != nil {
				return err
			}
			dailyValue = nullString(encoded)
		}
		err = qry.InsertNutritionElement(ctx, db.InsertNutritionElementParams{
			StoreID:               record.StoreID,
			Slug:                  record.Slug,
			Position:              int64(i),
			Key:                   elem.Key,
			Name:                  elem.Name,
			UnitOfMeasure:         elem.UnitOfMeasure,
			AmountPerServing:      amount,
			RecommendedDailyValue: dailyValue,
		})
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
